package get

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/service/export"
	"oee-board/internal/service/printout"
	"oee-board/internal/service/ranking"
	"oee-board/internal/storage"
)

// rosterLimit is high enough to rank every operator of the window.
const rosterLimit = 1000

type RosterProvider interface {
	CompareMetrics(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error)
}

type Response struct {
	Metric ranking.Metric   `json:"metric"`
	Title  string           `json:"title"`
	Period string           `json:"period"`
	Ranked []ranking.Ranked `json:"ranked"`
}

// GetLeaderboard ranks the roster of the last `days` days and renders it as
// JSON, a printable HTML poster, CSV or XLSX.
func GetLeaderboard(log *slog.Logger, provider RosterProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.leaderboard.GetLeaderboard"

		q := r.URL.Query()

		metric, err := ranking.ParseMetric(q.Get("metric"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		days := printout.DefaultWindowDays
		if v := q.Get("days"); v != "" {
			days, err = strconv.Atoi(v)
			if err != nil || days < 1 {
				http.Error(w, "invalid days", http.StatusBadRequest)
				return
			}
		}

		groupBy := storage.GroupByOperator
		if v := q.Get("group_by"); v != "" {
			if groupBy, err = storage.ParseGroupBy(v); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		format := q.Get("format")
		switch format {
		case "":
			format = "json"
		case "json", "html", export.FormatCSV, export.FormatXLSX:
		default:
			http.Error(w, "format must be one of json, html, csv, xlsx", http.StatusBadRequest)
			return
		}

		now := time.Now()
		from, to := printout.Window(now, days)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		roster, err := provider.CompareMetrics(ctx, storage.CompareFilter{GroupBy: groupBy, From: from, To: to, Limit: rosterLimit})
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch roster")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ranked := ranking.Rank(roster, metric)
		doc := printout.Compose(ranked, metric, printout.Period(now, days))

		if format == "json" {
			render.JSON(w, r, Response{Metric: metric, Title: doc.Subtitle, Period: doc.Period, Ranked: ranked})
			return
		}

		var (
			buf         bytes.Buffer
			contentType string
		)
		switch format {
		case "html":
			err = printout.WriteHTML(&buf, doc)
			contentType = "text/html; charset=utf-8"
		case export.FormatCSV:
			err = printout.WriteCSV(&buf, ranked, metric)
			contentType = export.ContentTypeCSV
		case export.FormatXLSX:
			err = printout.WriteXLSX(&buf, doc, ranked)
			contentType = export.ContentTypeXLSX
		}
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("format", format),
				slog.String("error", err.Error()),
			).Error("failed to render leaderboard")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		if format != "html" {
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=leaderboard_%s_%s.%s", metric, to, format))
		}
		w.Write(buf.Bytes())
	}
}
