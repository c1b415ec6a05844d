package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

type SettingSaver interface {
	PutSetting(ctx context.Context, st storage.Setting) (*storage.Setting, error)
}

// PutSetting creates or updates a setting from the value and description query parameters.
// Target settings must be percentages between 0 and 100.
func PutSetting(log *slog.Logger, saver SettingSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.PutSetting"

		key := chi.URLParam(r, "key")
		value := strings.TrimSpace(r.URL.Query().Get("value"))
		if value == "" {
			http.Error(w, "value is required", http.StatusBadRequest)
			return
		}

		if _, ok := storage.DefaultTargets[key]; ok {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || v < 0 || v > 100 {
				http.Error(w, "target must be a number between 0 and 100", http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		setting, err := saver.PutSetting(ctx, storage.Setting{
			Key:         key,
			Value:       value,
			Description: r.URL.Query().Get("description"),
		})
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("key", key),
				slog.String("error", err.Error()),
			).Error("failed to save setting")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("setting saved", slog.String("key", key), slog.String("value", value))

		render.JSON(w, r, setting)
	}
}
