// Package ranking orders an operator roster by a selectable metric and
// assigns display ranks.
package ranking

import (
	"fmt"
	"slices"
	"sync"

	"oee-board/internal/service/format"
	"oee-board/internal/storage"
)

type Metric string

const (
	MetricVolume Metric = "volume"
	MetricOEE    Metric = "oee"
	MetricYield  Metric = "yield"
)

// MinYieldSample is the volume a record must exceed to be ranked by yield.
const MinYieldSample = 50

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricVolume, MetricOEE, MetricYield:
		return m, nil
	case "":
		return MetricVolume, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Title is the leaderboard header of the metric.
func (m Metric) Title() string {
	switch m {
	case MetricOEE:
		return "Top Performers by Efficiency"
	case MetricYield:
		return "Quality Champions (Yield)"
	default:
		return "Top Producers by Volume"
	}
}

type Ranked struct {
	storage.OperatorRecord
	Rank        int `json:"rank"`
	DisplayRank int `json:"displayRank"`
}

// Value is the sort key of r under metric m.
func Value(r storage.OperatorRecord, m Metric) float64 {
	switch m {
	case MetricOEE:
		return r.OEE
	case MetricYield:
		return format.Yield(r.TotalGood, r.TotalProduced)
	default:
		return float64(r.TotalProduced)
	}
}

// Rank returns a fresh ranking of roster by m, highest first. Ties keep roster order.
// Under MetricYield records with TotalProduced <= MinYieldSample are dropped.
// The roster is not modified.
func Rank(roster []storage.OperatorRecord, m Metric) []Ranked {
	candidates := make([]storage.OperatorRecord, 0, len(roster))
	for _, r := range roster {
		if m == MetricYield && r.TotalProduced <= MinYieldSample {
			continue
		}
		candidates = append(candidates, r)
	}

	slices.SortStableFunc(candidates, func(a, b storage.OperatorRecord) int {
		va, vb := Value(a, m), Value(b, m)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})

	ranked := make([]Ranked, len(candidates))
	for i, r := range candidates {
		ranked[i] = Ranked{OperatorRecord: r, Rank: i, DisplayRank: i + 1}
	}

	return ranked
}

// Board keeps a roster and a selected metric and re-ranks whenever either changes.
type Board struct {
	mu     sync.RWMutex
	roster []storage.OperatorRecord
	metric Metric
	ranked []Ranked
}

func NewBoard(m Metric) *Board {
	return &Board{metric: m, ranked: []Ranked{}}
}

// SetRoster replaces the roster with a new snapshot and returns the new ranking.
func (b *Board) SetRoster(roster []storage.OperatorRecord) []Ranked {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roster = slices.Clone(roster)
	b.ranked = Rank(b.roster, b.metric)
	return slices.Clone(b.ranked)
}

func (b *Board) SetMetric(m Metric) []Ranked {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metric = m
	b.ranked = Rank(b.roster, b.metric)
	return slices.Clone(b.ranked)
}

func (b *Board) Metric() Metric {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metric
}

func (b *Board) Ranked() []Ranked {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.ranked)
}
