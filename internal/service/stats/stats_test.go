package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oee-board/internal/service/gauge"
	"oee-board/internal/storage"
)

type MockStatsStorage struct {
	mock.Mock
}

func (m *MockStatsStorage) GetReport(ctx context.Context, id int64) (*storage.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Report), args.Error(1)
}

func (m *MockStatsStorage) LatestReport(ctx context.Context) (*storage.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Report), args.Error(1)
}

func (m *MockStatsStorage) ListMetrics(ctx context.Context, reportID int64) ([]storage.MetricRow, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.MetricRow), args.Error(1)
}

func (m *MockStatsStorage) RecentReports(ctx context.Context, n int) ([]storage.Report, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Report), args.Error(1)
}

func (m *MockStatsStorage) ReportAverages(ctx context.Context, reports []storage.Report) ([]storage.Averages, error) {
	args := m.Called(ctx, reports)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Averages), args.Error(1)
}

func (m *MockStatsStorage) ListSettings(ctx context.Context) ([]storage.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Setting), args.Error(1)
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 9, 0, 0, 0, time.UTC)
}

var sampleMetrics = []storage.MetricRow{
	{ID: 1, ReportID: 3, Date: "2026-01-15", Operator: "Ann", OEE: 0.6, Availability: 0.8, Performance: 0.9, Quality: 0.95},
	{ID: 2, ReportID: 3, Date: "2026-01-14", Operator: "Bob", OEE: 0.7, Availability: 0.9, Performance: 0.9, Quality: 0.99},
}

func reportIDs(reports []storage.Report) []int64 {
	ids := make([]int64, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func TestStats_LatestReport(t *testing.T) {
	st := new(MockStatsStorage)
	latest := &storage.Report{ID: 3, Filename: "c.csv", UploadedAt: day(15)}

	st.On("LatestReport", mock.Anything).Return(latest, nil)
	st.On("ListMetrics", mock.Anything, int64(3)).Return(sampleMetrics, nil)
	st.On("RecentReports", mock.Anything, TrendReports).Return([]storage.Report{
		*latest,
		{ID: 2, UploadedAt: day(14)},
		{ID: 1, UploadedAt: day(13)},
	}, nil)
	st.On("ReportAverages", mock.Anything, mock.MatchedBy(func(rs []storage.Report) bool {
		return assert.ObjectsAreEqual([]int64{1, 2, 3}, reportIDs(rs))
	})).Return([]storage.Averages{
		{ReportID: 1, UploadedAt: day(13), OEE: 0.5, Availability: 0.6, Performance: 0.7, Quality: 0.8},
		{ReportID: 3, UploadedAt: day(15), OEE: 0.65, Availability: 0.85, Performance: 0.9, Quality: 0.97},
	}, nil)
	st.On("ListSettings", mock.Anything).Return([]storage.Setting{}, nil)

	got, err := NewStatsService(slog.Default(), st).Stats(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.ReportID)
	assert.Equal(t, "2026-01-15", got.ReportDate)
	assert.Equal(t, 65.0, got.OEE)
	assert.Equal(t, 85.0, got.Availability)
	assert.Equal(t, 90.0, got.Performance)
	assert.Equal(t, 97.0, got.Quality)
	assert.Equal(t, 2, got.DBRowCount)
	assert.Equal(t, sampleMetrics, got.RecentActivity)

	assert.Equal(t, []string{"01/13", "01/15"}, got.Sparkline.Labels)
	assert.Equal(t, []float64{0.5, 0.65}, got.Sparkline.OEE)

	assert.Equal(t, storage.Targets{OEE: 85, Availability: 90, Performance: 95, Quality: 99}, got.Targets)
	assert.Equal(t, []string{
		"OEE is 20.0% below target (85%).",
		"Availability is the primary loss factor (15% loss).",
	}, got.Insights)

	require.Len(t, got.Gauges, 4)
	assert.Equal(t, "OEE", got.Gauges[0].Title)
	assert.Equal(t, gauge.ColorBelow, got.Gauges[0].Color)
	assert.InDelta(t, 297.0, got.Gauges[0].Angle, 1e-9)
	st.AssertExpectations(t)
}

func TestStats_NoReports(t *testing.T) {
	st := new(MockStatsStorage)
	st.On("LatestReport", mock.Anything).Return(nil, fmt.Errorf("wrap: %w", storage.ErrNotFound))

	got, err := NewStatsService(slog.Default(), st).Stats(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, Empty(), got)
	assert.NotNil(t, got.Insights)
	st.AssertNotCalled(t, "ListMetrics", mock.Anything, mock.Anything)
}

func TestStats_UnknownReport(t *testing.T) {
	st := new(MockStatsStorage)
	st.On("GetReport", mock.Anything, int64(42)).Return(nil, storage.ErrNotFound)

	_, err := NewStatsService(slog.Default(), st).Stats(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStats_FetchError(t *testing.T) {
	st := new(MockStatsStorage)
	st.On("GetReport", mock.Anything, int64(3)).Return(&storage.Report{ID: 3, UploadedAt: day(15)}, nil)
	st.On("ListMetrics", mock.Anything, int64(3)).Return(nil, errors.New("db down"))
	st.On("RecentReports", mock.Anything, TrendReports).Return([]storage.Report{}, nil).Maybe()
	st.On("ReportAverages", mock.Anything, mock.Anything).Return([]storage.Averages{}, nil).Maybe()
	st.On("ListSettings", mock.Anything).Return([]storage.Setting{}, nil).Maybe()

	_, err := NewStatsService(slog.Default(), st).Stats(context.Background(), 3)
	assert.ErrorContains(t, err, "db down")
}

func TestTargets(t *testing.T) {
	st := new(MockStatsStorage)
	st.On("ListSettings", mock.Anything).Return([]storage.Setting{
		{Key: storage.SettingOEETarget, Value: "80"},
		{Key: storage.SettingQualityTarget, Value: "0.98"},
		{Key: storage.SettingPerformanceTarget, Value: "abc"},
		{Key: "theme", Value: "dark"},
	}, nil)

	got, err := NewStatsService(slog.Default(), st).Targets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 80.0, got.OEE)
	assert.Equal(t, 90.0, got.Availability)
	assert.Equal(t, 95.0, got.Performance)
	assert.InDelta(t, 98.0, got.Quality, 1e-9)
}

func TestInsights(t *testing.T) {
	tests := []struct {
		name string
		avg  storage.Averages
		want []string
	}{
		{
			name: "on track, no significant loss",
			avg:  storage.Averages{OEE: 0.9, Availability: 0.97, Performance: 0.96, Quality: 0.99},
			want: []string{"OEE is on track above target."},
		},
		{
			name: "performance drives the loss",
			avg:  storage.Averages{OEE: 0.86, Availability: 0.95, Performance: 0.75, Quality: 0.99},
			want: []string{"OEE is on track above target.", "Performance is the primary loss factor (25% loss)."},
		},
		{
			name: "ties go to availability",
			avg:  storage.Averages{OEE: 0.5, Availability: 0.8, Performance: 0.8, Quality: 0.8},
			want: []string{"OEE is 35.0% below target (85%).", "Availability is the primary loss factor (20% loss)."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Insights(tt.avg, 85))
		})
	}
}
