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

type EntryDeleter interface {
	DeleteEntry(ctx context.Context, id int64) error
}

func DeleteEntry(log *slog.Logger, deleter EntryDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entries.DeleteEntry"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = deleter.DeleteEntry(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("entry_id", id),
				slog.String("error", err.Error()),
			).Error("failed to delete entry")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
