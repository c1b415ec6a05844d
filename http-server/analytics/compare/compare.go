package compare

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/storage"
)

const defaultLimit = 100

type CompareProvider interface {
	CompareMetrics(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error)
}

// Compare returns per-group OEE averages, best first.
func Compare(log *slog.Logger, provider CompareProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.Compare"

		q := r.URL.Query()

		groupBy, err := storage.ParseGroupBy(q.Get("group_by"))
		if err != nil {
			http.Error(w, "group_by must be one of shift, part, machine, operator", http.StatusBadRequest)
			return
		}

		filter := storage.CompareFilter{GroupBy: groupBy, Limit: defaultLimit}

		for param, dst := range map[string]*string{"start_date": &filter.From, "end_date": &filter.To} {
			v := q.Get(param)
			if v == "" {
				continue
			}
			if _, err := time.Parse(time.DateOnly, v); err != nil {
				http.Error(w, "invalid "+param, http.StatusBadRequest)
				return
			}
			*dst = v
		}

		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = limit
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := provider.CompareMetrics(ctx, filter)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("group_by", string(groupBy)),
				slog.String("error", err.Error()),
			).Error("failed to compare metrics")
			http.Error(w, "Analytics Error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, records)
	}
}
