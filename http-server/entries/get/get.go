package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type EntriesProvider interface {
	ListEntries(ctx context.Context, reportID int64) ([]storage.ReportEntry, error)
}

func ListEntries(log *slog.Logger, provider EntriesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entries.ListEntries"

		reportID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := provider.ListEntries(ctx, reportID)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", reportID),
				slog.String("error", err.Error()),
			).Error("failed to list entries")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, entries)
	}
}
