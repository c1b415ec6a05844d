package get

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"oee-board/internal/service/ranking"
	"oee-board/internal/storage"
)

type MockRosterProvider struct {
	mock.Mock
}

func (m *MockRosterProvider) CompareMetrics(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.OperatorRecord), args.Error(1)
}

func roster() []storage.OperatorRecord {
	return []storage.OperatorRecord{
		{Name: "Ann", TotalProduced: 500, TotalGood: 450, OEE: 0.7},
		{Name: "Bob", TotalProduced: 40, TotalGood: 40, OEE: 0.9},
		{Name: "Cy", TotalProduced: 900, TotalGood: 880, OEE: 0.8},
	}
}

func get(provider RosterProvider, query string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	GetLeaderboard(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/leaderboard?"+query, nil))
	return rr
}

func TestGetLeaderboard_JSONYield(t *testing.T) {
	provider := new(MockRosterProvider)
	provider.On("CompareMetrics", mock.Anything, mock.MatchedBy(func(f storage.CompareFilter) bool {
		return f.GroupBy == storage.GroupByOperator && f.Limit == rosterLimit && f.From < f.To
	})).Return(roster(), nil)

	rr := get(provider, "metric=yield")

	require.Equal(t, http.StatusOK, rr.Code)
	var got Response
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, ranking.MetricYield, got.Metric)
	require.Len(t, got.Ranked, 2)
	assert.Equal(t, "Cy", got.Ranked[0].Name)
	assert.Equal(t, 1, got.Ranked[0].DisplayRank)
	assert.Equal(t, "Ann", got.Ranked[1].Name)
}

func TestGetLeaderboard_CSV(t *testing.T) {
	provider := new(MockRosterProvider)
	provider.On("CompareMetrics", mock.Anything, mock.Anything).Return(roster(), nil)

	rr := get(provider, "metric=oee&format=csv&days=7")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "attachment; filename=leaderboard_oee_"))

	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Bob", records[1][1])
}

func TestGetLeaderboard_XLSX(t *testing.T) {
	provider := new(MockRosterProvider)
	provider.On("CompareMetrics", mock.Anything, mock.Anything).Return(roster(), nil)

	rr := get(provider, "format=xlsx")

	require.Equal(t, http.StatusOK, rr.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Leaderboard"}, f.GetSheetList())
}

func TestGetLeaderboard_HTML(t *testing.T) {
	provider := new(MockRosterProvider)
	provider.On("CompareMetrics", mock.Anything, mock.Anything).Return(roster(), nil)

	rr := get(provider, "format=html")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Top Producers by Volume")
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
}

func TestGetLeaderboard_BadInput(t *testing.T) {
	for _, query := range []string{"metric=speed", "days=0", "days=x", "format=pdf", "group_by=team"} {
		t.Run(query, func(t *testing.T) {
			provider := new(MockRosterProvider)
			assert.Equal(t, http.StatusBadRequest, get(provider, query).Code)
			provider.AssertNotCalled(t, "CompareMetrics", mock.Anything, mock.Anything)
		})
	}
}

func TestGetLeaderboard_StorageError(t *testing.T) {
	provider := new(MockRosterProvider)
	provider.On("CompareMetrics", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, get(provider, "").Code)
}
