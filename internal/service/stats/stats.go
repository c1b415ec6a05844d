// Package stats builds the KPI snapshot behind the dashboard.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"oee-board/internal/service/format"
	"oee-board/internal/service/gauge"
	"oee-board/internal/storage"
)

const (
	// TrendReports is how many reports the sparkline covers, current one included.
	TrendReports = 7
	// LossThreshold is the loss share above which the main loss driver is called out.
	LossThreshold = 0.05
)

type StatsStorage interface {
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
	LatestReport(ctx context.Context) (*storage.Report, error)
	ListMetrics(ctx context.Context, reportID int64) ([]storage.MetricRow, error)
	RecentReports(ctx context.Context, n int) ([]storage.Report, error)
	ReportAverages(ctx context.Context, reports []storage.Report) ([]storage.Averages, error)
	ListSettings(ctx context.Context) ([]storage.Setting, error)
}

type StatsService struct {
	log     *slog.Logger
	storage StatsStorage
}

func NewStatsService(log *slog.Logger, storage StatsStorage) *StatsService {
	return &StatsService{log: log, storage: storage}
}

// Empty is the snapshot returned before any report was uploaded.
func Empty() storage.DashboardStats {
	return storage.DashboardStats{
		RecentActivity: []storage.MetricRow{},
		Sparkline: storage.Sparkline{
			OEE: []float64{}, Availability: []float64{}, Performance: []float64{}, Quality: []float64{}, Labels: []string{},
		},
		Insights: []string{},
		Gauges:   []storage.GaugeReading{},
	}
}

// Stats returns the snapshot of reportID, or of the latest report when reportID is 0.
func (s *StatsService) Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error) {
	const op = "service.stats.Stats"

	var (
		report *storage.Report
		err    error
	)
	if reportID > 0 {
		report, err = s.storage.GetReport(ctx, reportID)
	} else {
		report, err = s.storage.LatestReport(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return Empty(), nil
		}
	}
	if err != nil {
		return storage.DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		metrics   []storage.MetricRow
		sparkline storage.Sparkline
		targets   storage.Targets
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, err = s.storage.ListMetrics(gctx, report.ID)
		return err
	})
	g.Go(func() error {
		var err error
		sparkline, err = s.trend(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		targets, err = s.Targets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return storage.DashboardStats{}, fmt.Errorf("%s: report id=%d: %w", op, report.ID, err)
	}

	avg := average(metrics)

	return storage.DashboardStats{
		ReportID:       report.ID,
		ReportDate:     report.UploadedAt.Format(time.DateOnly),
		OEE:            format.Round(avg.OEE*100, 1),
		Availability:   format.Round(avg.Availability*100, 1),
		Performance:    format.Round(avg.Performance*100, 1),
		Quality:        format.Round(avg.Quality*100, 1),
		RecentActivity: metrics,
		DBRowCount:     len(metrics),
		Sparkline:      sparkline,
		Insights:       Insights(avg, targets.OEE),
		Targets:        targets,
		Gauges:         Gauges(avg, targets),
	}, nil
}

func average(metrics []storage.MetricRow) storage.Averages {
	a := storage.Averages{Count: len(metrics)}
	if a.Count == 0 {
		return a
	}
	for _, m := range metrics {
		a.OEE += m.OEE
		a.Availability += m.Availability
		a.Performance += m.Performance
		a.Quality += m.Quality
	}
	n := float64(a.Count)
	a.OEE /= n
	a.Availability /= n
	a.Performance /= n
	a.Quality /= n
	return a
}

// trend averages the newest reports, oldest first. Reports without metrics are skipped.
func (s *StatsService) trend(ctx context.Context) (storage.Sparkline, error) {
	reports, err := s.storage.RecentReports(ctx, TrendReports)
	if err != nil {
		return storage.Sparkline{}, fmt.Errorf("recent reports: %w", err)
	}
	slices.Reverse(reports)

	avgs, err := s.storage.ReportAverages(ctx, reports)
	if err != nil {
		return storage.Sparkline{}, fmt.Errorf("report averages: %w", err)
	}

	sp := Empty().Sparkline
	for _, a := range avgs {
		sp.OEE = append(sp.OEE, a.OEE)
		sp.Availability = append(sp.Availability, a.Availability)
		sp.Performance = append(sp.Performance, a.Performance)
		sp.Quality = append(sp.Quality, a.Quality)
		sp.Labels = append(sp.Labels, a.UploadedAt.Format("01/02"))
	}
	return sp, nil
}

// Targets reads the target settings as percentages. Missing or unreadable values fall back to the defaults.
func (s *StatsService) Targets(ctx context.Context) (storage.Targets, error) {
	const op = "service.stats.Targets"

	settings, err := s.storage.ListSettings(ctx)
	if err != nil {
		return storage.Targets{}, fmt.Errorf("%s: %w", op, err)
	}

	values := make(map[string]float64, len(storage.DefaultTargets))
	for k, v := range storage.DefaultTargets {
		values[k] = v
	}
	for _, st := range settings {
		if _, ok := values[st.Key]; !ok {
			continue
		}
		v, err := strconv.ParseFloat(st.Value, 64)
		if err != nil {
			s.log.Warn("ignoring unreadable target setting",
				slog.String("op", op),
				slog.String("key", st.Key),
				slog.String("value", st.Value),
			)
			continue
		}
		values[st.Key] = percent(v)
	}

	return storage.Targets{
		OEE:          values[storage.SettingOEETarget],
		Availability: values[storage.SettingAvailabilityTarget],
		Performance:  values[storage.SettingPerformanceTarget],
		Quality:      values[storage.SettingQualityTarget],
	}, nil
}

// percent accepts both 85 and 0.85.
func percent(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

// Insights are the dashboard takeaways for the given averages. oeeTarget is a percentage.
func Insights(avg storage.Averages, oeeTarget float64) []string {
	target := oeeTarget / 100

	insights := []string{}
	if avg.OEE < target {
		insights = append(insights, fmt.Sprintf("OEE is %.1f%% below target (%d%%).",
			(target-avg.OEE)*100, int(math.Round(oeeTarget))))
	} else {
		insights = append(insights, "OEE is on track above target.")
	}

	losses := []struct {
		name string
		loss float64
	}{
		{"Availability", 1 - avg.Availability},
		{"Performance", 1 - avg.Performance},
		{"Quality", 1 - avg.Quality},
	}
	top := losses[0]
	for _, l := range losses[1:] {
		if l.loss > top.loss {
			top = l
		}
	}
	if top.loss > LossThreshold {
		insights = append(insights, fmt.Sprintf("%s is the primary loss factor (%d%% loss).",
			top.name, int(math.Floor(top.loss*100+1e-9))))
	}

	return insights
}

// Gauges places each average on its dial against its target.
func Gauges(avg storage.Averages, t storage.Targets) []storage.GaugeReading {
	readings := []struct {
		title  string
		value  float64
		target float64
	}{
		{"OEE", avg.OEE, t.OEE},
		{"Availability", avg.Availability, t.Availability},
		{"Performance", avg.Performance, t.Performance},
		{"Quality", avg.Quality, t.Quality},
	}

	out := make([]storage.GaugeReading, len(readings))
	for i, r := range readings {
		target := r.target
		g := gauge.New(format.Round(r.value*100, 1), &target)
		out[i] = storage.GaugeReading{
			Title:  r.title,
			Value:  g.Value,
			Target: target,
			Angle:  g.Angle,
			Color:  g.Color,
		}
	}
	return out
}
