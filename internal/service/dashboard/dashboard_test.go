package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"oee-board/internal/storage"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(storage.DashboardStats), args.Error(1)
}

func (m *MockSource) Compare(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.OperatorRecord), args.Error(1)
}

func groupIs(g storage.GroupBy) any {
	return mock.MatchedBy(func(f storage.CompareFilter) bool { return f.GroupBy == g })
}

func roster(name string) []storage.OperatorRecord {
	return []storage.OperatorRecord{{Name: name, TotalProduced: 100, TotalGood: 95, OEE: 0.8}}
}

func TestRefresh_AllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := new(MockSource)
	src.On("Stats", mock.Anything, int64(0)).Return(storage.DashboardStats{ReportID: 3, OEE: 71.2}, nil)
	src.On("Compare", mock.Anything, groupIs(storage.GroupByOperator)).Return(roster("Ann"), nil)
	src.On("Compare", mock.Anything, groupIs(storage.GroupByPart)).Return(roster("P-1"), nil)
	src.On("Compare", mock.Anything, groupIs(storage.GroupByShift)).Return(roster("1"), nil)

	d := New(slog.Default(), src)
	errs := d.Refresh(context.Background(), Query{})

	assert.Empty(t, errs)
	v := d.View()
	require.NotNil(t, v.Stats)
	assert.Equal(t, 71.2, v.Stats.OEE)
	assert.Equal(t, roster("Ann"), v.Operators)
	assert.Equal(t, roster("P-1"), v.Parts)
	assert.Equal(t, roster("1"), v.Shifts)
	src.AssertExpectations(t)
}

func TestRefresh_PartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := new(MockSource)
	src.On("Stats", mock.Anything, int64(0)).Return(storage.DashboardStats{}, errors.New("stats down"))
	src.On("Compare", mock.Anything, groupIs(storage.GroupByOperator)).Return(roster("Ann"), nil)
	src.On("Compare", mock.Anything, groupIs(storage.GroupByPart)).Return(nil, errors.New("parts down"))
	src.On("Compare", mock.Anything, groupIs(storage.GroupByShift)).Return(roster("2"), nil)

	d := New(slog.Default(), src)
	errs := d.Refresh(context.Background(), Query{})

	require.Len(t, errs, 2)
	assert.ErrorContains(t, errs[SourceStats], "stats down")
	assert.ErrorContains(t, errs[SourceParts], "parts down")

	v := d.View()
	assert.Nil(t, v.Stats)
	assert.Nil(t, v.Parts)
	assert.Equal(t, roster("Ann"), v.Operators)
	assert.Equal(t, roster("2"), v.Shifts)
}

func TestRefresh_FailureKeepsPreviousData(t *testing.T) {
	defer goleak.VerifyNone(t)

	first := new(MockSource)
	first.On("Stats", mock.Anything, int64(5)).Return(storage.DashboardStats{ReportID: 5}, nil)
	first.On("Compare", mock.Anything, mock.Anything).Return(roster("Ann"), nil)

	d := New(slog.Default(), first)
	require.Empty(t, d.Refresh(context.Background(), Query{ReportID: 5}))

	second := new(MockSource)
	second.On("Stats", mock.Anything, int64(5)).Return(storage.DashboardStats{ReportID: 5, OEE: 50}, nil)
	second.On("Compare", mock.Anything, groupIs(storage.GroupByOperator)).Return(nil, errors.New("timeout"))
	second.On("Compare", mock.Anything, groupIs(storage.GroupByPart)).Return(roster("P-2"), nil)
	second.On("Compare", mock.Anything, groupIs(storage.GroupByShift)).Return(roster("3"), nil)
	d.src = second

	errs := d.Refresh(context.Background(), Query{ReportID: 5})

	assert.Len(t, errs, 1)
	v := d.View()
	assert.Equal(t, 50.0, v.Stats.OEE)
	assert.Equal(t, roster("Ann"), v.Operators)
	assert.Equal(t, roster("P-2"), v.Parts)
}

func TestRefresh_PassesDateWindow(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := new(MockSource)
	src.On("Stats", mock.Anything, int64(0)).Return(storage.DashboardStats{}, nil)
	src.On("Compare", mock.Anything, mock.MatchedBy(func(f storage.CompareFilter) bool {
		return f.From == "2026-01-01" && f.To == "2026-01-31"
	})).Return(roster("x"), nil)

	errs := New(slog.Default(), src).Refresh(context.Background(), Query{From: "2026-01-01", To: "2026-01-31"})

	assert.Empty(t, errs)
	src.AssertNumberOfCalls(t, "Compare", 3)
}
