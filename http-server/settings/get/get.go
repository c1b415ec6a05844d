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

type SettingsProvider interface {
	ListSettings(ctx context.Context) ([]storage.Setting, error)
	GetSetting(ctx context.Context, key string) (*storage.Setting, error)
}

func ListSettings(log *slog.Logger, provider SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.ListSettings"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		settings, err := provider.ListSettings(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to list settings")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, settings)
	}
}

// GetSetting returns one setting. Targets that were never saved report their default.
func GetSetting(log *slog.Logger, provider SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.GetSetting"

		key := chi.URLParam(r, "key")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		setting, err := provider.GetSetting(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			if def, ok := storage.DefaultTargets[key]; ok {
				render.JSON(w, r, storage.Setting{Key: key, Value: strconv.FormatFloat(def, 'f', -1, 64)})
				return
			}
			http.Error(w, "Setting not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("key", key),
				slog.String("error", err.Error()),
			).Error("failed to get setting")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, setting)
	}
}
