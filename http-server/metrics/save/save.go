package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type MetricsSaver interface {
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
	SaveMetrics(ctx context.Context, reportID int64, metrics []storage.MetricRow) error
}

type Response struct {
	ReportID int64 `json:"report_id"`
	Rows     int   `json:"rows"`
}

func validate(m storage.MetricRow) error {
	for name, v := range map[string]float64{
		"availability": m.Availability, "performance": m.Performance, "quality": m.Quality, "oee": m.OEE,
	} {
		if v < 0 {
			return fmt.Errorf("%s %.4f is negative", name, v)
		}
	}
	if m.GoodCount < 0 || m.RejectCount < 0 || m.TargetCount < 0 {
		return errors.New("counts must not be negative")
	}
	if _, err := time.Parse(time.DateOnly, m.Date); err != nil {
		return fmt.Errorf("invalid date %q", m.Date)
	}
	return nil
}

// IngestMetrics replaces the metric rows of a report with rows computed by the OEE engine.
func IngestMetrics(log *slog.Logger, saver MetricsSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.metrics.IngestMetrics"

		reportID, err := strconv.ParseInt(chi.URLParam(r, "report_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		var rows []storage.MetricRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		for i := range rows {
			if err := validate(rows[i]); err != nil {
				http.Error(w, fmt.Sprintf("row %d: %v", i, err), http.StatusBadRequest)
				return
			}
			rows[i].ReportID = reportID
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if _, err := saver.GetReport(ctx, reportID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Report not found", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load report")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := saver.SaveMetrics(ctx, reportID, rows); err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", reportID),
				slog.String("error", err.Error()),
			).Error("failed to save metrics")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("metrics ingested", slog.Int64("report_id", reportID), slog.Int("rows", len(rows)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{ReportID: reportID, Rows: len(rows)})
	}
}
