package printpage

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oee-board/internal/storage"
)

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(storage.DashboardStats), args.Error(1)
}

func TestPrintStats_RendersRegions(t *testing.T) {
	provider := new(MockStatsProvider)
	provider.On("Stats", mock.Anything, int64(0)).Return(storage.DashboardStats{
		ReportID:   4,
		ReportDate: "2026-01-15",
		Insights:   []string{"OEE is on track above target."},
		Gauges:     []storage.GaugeReading{{Title: "OEE", Value: 88, Target: 85}},
		Sparkline:  storage.Sparkline{Labels: []string{"01/15"}, OEE: []float64{0.88}, Availability: []float64{0.9}, Performance: []float64{0.97}, Quality: []float64{1}},
	}, nil)

	rr := httptest.NewRecorder()
	PrintStats(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics/stats/print", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "Report #4, 2026-01-15")
	assert.Contains(t, body, "OEE is on track above target.")
	assert.NotContains(t, body, "region-failed")
}

func TestPrintStats_BrokenTrendKeepsPage(t *testing.T) {
	provider := new(MockStatsProvider)
	provider.On("Stats", mock.Anything, int64(2)).Return(storage.DashboardStats{
		ReportID:   2,
		ReportDate: "2026-01-14",
		Insights:   []string{"Quality is the primary loss factor (7% loss)."},
		Sparkline:  storage.Sparkline{Labels: []string{"01/13", "01/14"}, OEE: []float64{0.5}},
	}, nil)

	rr := httptest.NewRecorder()
	PrintStats(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics/stats/print?report_id=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "region-failed")
	assert.Contains(t, body, "Quality is the primary loss factor (7% loss).")
}
