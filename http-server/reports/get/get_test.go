package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oee-board/internal/storage"
)

type MockReportsProvider struct {
	mock.Mock
}

func (m *MockReportsProvider) ListReports(ctx context.Context) ([]storage.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Report), args.Error(1)
}

func TestListReports_Success(t *testing.T) {
	provider := new(MockReportsProvider)
	uploaded := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	provider.On("ListReports", mock.Anything).Return([]storage.Report{{ID: 2, Filename: "b.csv", UploadedBy: 1, UploadedAt: uploaded}}, nil)

	rr := httptest.NewRecorder()
	ListReports(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []storage.Report
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, "b.csv", got[0].Filename)
	assert.True(t, uploaded.Equal(got[0].UploadedAt))
}

func TestListReports_Error(t *testing.T) {
	provider := new(MockReportsProvider)
	provider.On("ListReports", mock.Anything).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	ListReports(slog.Default(), provider).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
