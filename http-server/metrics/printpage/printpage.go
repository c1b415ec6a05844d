package printpage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"oee-board/http-server/metrics/get"
	"oee-board/internal/service/printout"
	"oee-board/internal/storage"
)

// PrintStats renders the printable dashboard. A failing section is replaced by
// an error panel; the rest of the page is still served.
func PrintStats(log *slog.Logger, provider get.StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.metrics.PrintStats"

		reportID, err := get.ReportIDParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stats, err := provider.Stats(ctx, reportID)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to build stats")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		page := printout.DashboardPage(stats, func(region string, err error) {
			log.With(
				slog.String("op", op),
				slog.String("region", region),
				slog.String("error", err.Error()),
			).Error("dashboard region failed")
		})

		var buf bytes.Buffer
		if err := page.Write(&buf); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to render dashboard")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
