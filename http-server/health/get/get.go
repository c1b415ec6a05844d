package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
	CountMetrics(ctx context.Context) (int, error)
}

type Response struct {
	Status     string `json:"status"`
	MetricRows int    `json:"metric_rows"`
}

// Health reports whether the database answers. 503 when it does not.
func Health(log *slog.Logger, checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.Health"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.Ping(ctx); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("database unreachable")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, Response{Status: "unavailable"})
			return
		}

		n, err := checker.CountMetrics(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("failed to count metrics")
		}

		render.JSON(w, r, Response{Status: "ok", MetricRows: n})
	}
}
