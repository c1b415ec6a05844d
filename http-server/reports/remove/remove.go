package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"oee-board/internal/storage"
)

type ReportDeleter interface {
	DeleteReport(ctx context.Context, id int64) error
}

// DeleteReport removes a report with its entries and metrics.
func DeleteReport(log *slog.Logger, deleter ReportDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.DeleteReport"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = deleter.DeleteReport(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", id),
				slog.String("error", err.Error()),
			).Error("failed to delete report")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("report deleted", slog.Int64("report_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
