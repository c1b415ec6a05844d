package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type StatsProvider interface {
	Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error)
}

type MetricsProvider interface {
	ListMetrics(ctx context.Context, reportID int64) ([]storage.MetricRow, error)
}

// ReportIDParam reads the optional report_id query parameter. 0 means latest.
func ReportIDParam(r *http.Request) (int64, error) {
	v := r.URL.Query().Get("report_id")
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid report_id")
	}
	return id, nil
}

// GetStats returns the KPI snapshot of one report, the latest by default.
func GetStats(log *slog.Logger, provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.metrics.GetStats"

		reportID, err := ReportIDParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stats, err := provider.Stats(ctx, reportID)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", reportID),
				slog.String("error", err.Error()),
			).Error("failed to build stats")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, stats)
	}
}

func GetReportMetrics(log *slog.Logger, provider MetricsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.metrics.GetReportMetrics"

		reportID, err := strconv.ParseInt(chi.URLParam(r, "report_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		metrics, err := provider.ListMetrics(ctx, reportID)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", reportID),
				slog.String("error", err.Error()),
			).Error("failed to list metrics")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, metrics)
	}
}
