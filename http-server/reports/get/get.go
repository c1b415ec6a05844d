package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type ReportsProvider interface {
	ListReports(ctx context.Context) ([]storage.Report, error)
}

// ListReports returns every report, newest upload first.
func ListReports(log *slog.Logger, provider ReportsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.ListReports"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reports, err := provider.ListReports(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to list reports")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, reports)
	}
}
