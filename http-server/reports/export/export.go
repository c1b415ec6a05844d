package export

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"oee-board/internal/service/export"
)

type ReportExporter interface {
	Export(ctx context.Context, reportID int64, format string) (*export.File, error)
}

// ExportReport sends the entries of a report joined with their metrics as a download.
func ExportReport(log *slog.Logger, exporter ReportExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.ExportReport"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		format := r.URL.Query().Get("format")
		if format == "" {
			format = export.FormatCSV
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		file, err := exporter.Export(ctx, id, format)
		switch {
		case errors.Is(err, export.ErrInvalidFormat):
			http.Error(w, "Invalid format. Use 'csv' or 'xlsx'", http.StatusBadRequest)
			return
		case errors.Is(err, export.ErrEmptyReport):
			http.Error(w, "Report not found or empty", http.StatusNotFound)
			return
		case err != nil:
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", id),
				slog.String("error", err.Error()),
			).Error("failed to export report")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+file.Name)
		w.Write(file.Data)
	}
}
