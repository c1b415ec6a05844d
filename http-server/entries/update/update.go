package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type EntryUpdater interface {
	UpdateEntry(ctx context.Context, id int64, u storage.EntryUpdate) (*storage.ReportEntry, error)
}

// UpdateEntry applies a partial update; total_count and planned time are recomputed.
func UpdateEntry(log *slog.Logger, updater EntryUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entries.UpdateEntry"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		var req storage.EntryUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entry, err := updater.UpdateEntry(ctx, id, req)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		case errors.Is(err, storage.ErrInvalidRecord):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			log.With(
				slog.String("op", op),
				slog.Int64("entry_id", id),
				slog.String("error", err.Error()),
			).Error("failed to update entry")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, entry)
	}
}
