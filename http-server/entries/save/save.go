package save

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type EntryCreator interface {
	CreateEntry(ctx context.Context, reportID int64, u storage.EntryUpdate) (*storage.ReportEntry, error)
}

// CreateEntry adds a manual row to a report. Blank fields get placeholder values.
func CreateEntry(log *slog.Logger, creator EntryCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entries.CreateEntry"

		reportID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid report id", http.StatusBadRequest)
			return
		}

		var req storage.EntryUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entry, err := creator.CreateEntry(ctx, reportID, req)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		case errors.Is(err, storage.ErrInvalidRecord):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			log.With(
				slog.String("op", op),
				slog.Int64("report_id", reportID),
				slog.String("error", err.Error()),
			).Error("failed to create entry")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, entry)
	}
}
