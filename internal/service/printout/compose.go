// Package printout builds the read-only print and export layouts of an
// already fetched leaderboard or dashboard.
package printout

import (
	"time"

	"oee-board/internal/service/format"
	"oee-board/internal/service/ranking"
)

const (
	LeaderboardTitle = "Production Leaderboard"
	PodiumSize       = 3
)

type PodiumSlot struct {
	Place int
	Name  string
	Value string
	Color string
}

type Row struct {
	Rank   int
	Name   string
	Volume string
	Good   string
	Value  string
}

// Document is the print layout of a ranked roster.
type Document struct {
	Title       string
	Subtitle    string
	Period      string
	Metric      ranking.Metric
	ValueHeader string
	// Podium holds the first three places in rank order. Missing places are absent.
	Podium []PodiumSlot
	// Rows lists every entry from the fourth place on.
	Rows []Row
}

// PodiumValue is the headline figure shown under a podium place.
func PodiumValue(r ranking.Ranked, m ranking.Metric) string {
	switch m {
	case ranking.MetricOEE:
		return format.OEEPercent(r.OEE)
	case ranking.MetricYield:
		return format.YieldPercent(r.TotalGood, r.TotalProduced)
	default:
		return format.Count(r.TotalProduced)
	}
}

// TableValue is the right-most column of the listing: yield under the yield
// metric, OEE otherwise.
func TableValue(r ranking.Ranked, m ranking.Metric) string {
	if m == ranking.MetricYield {
		return format.YieldPercent(r.TotalGood, r.TotalProduced)
	}
	return format.OEEPercent(r.OEE)
}

func valueHeader(m ranking.Metric) string {
	if m == ranking.MetricYield {
		return "Yield Rate"
	}
	return "OEE Score"
}

// Compose lays out ranked for printing. It does not modify ranked.
func Compose(ranked []ranking.Ranked, m ranking.Metric, period string) Document {
	doc := Document{
		Title:       LeaderboardTitle,
		Subtitle:    m.Title(),
		Period:      period,
		Metric:      m,
		ValueHeader: valueHeader(m),
		Podium:      []PodiumSlot{},
		Rows:        []Row{},
	}

	for i, r := range ranked {
		if i < PodiumSize {
			doc.Podium = append(doc.Podium, PodiumSlot{
				Place: r.DisplayRank,
				Name:  r.Name,
				Value: PodiumValue(r, m),
				Color: format.RankColor(r.Rank),
			})
			continue
		}

		doc.Rows = append(doc.Rows, Row{
			Rank:   r.DisplayRank,
			Name:   r.Name,
			Volume: format.Count(r.TotalProduced),
			Good:   format.Count(r.TotalGood),
			Value:  TableValue(r, m),
		})
	}

	return doc
}

// PodiumOrder returns the podium in stage order: second, first, third.
func (d Document) PodiumOrder() []PodiumSlot {
	order := make([]PodiumSlot, 0, len(d.Podium))
	for _, idx := range []int{1, 0, 2} {
		if idx < len(d.Podium) {
			order = append(order, d.Podium[idx])
		}
	}
	return order
}

// DefaultWindowDays is the look-back of the leaderboard when no window is given.
const DefaultWindowDays = 30

// Window returns the leaderboard date range ending at now as YYYY-MM-DD bounds.
func Window(now time.Time, days int) (from, to string) {
	return now.AddDate(0, 0, -days).Format(time.DateOnly), now.Format(time.DateOnly)
}

// Period labels a window the way the poster prints it, e.g. "Dec 16 - Jan 15, 2026".
func Period(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format("Jan 2") + " - " + now.Format("Jan 2, 2006")
}
