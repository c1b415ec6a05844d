package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oee-board/internal/storage"
)

type MockMetricsSaver struct {
	mock.Mock
}

func (m *MockMetricsSaver) GetReport(ctx context.Context, id int64) (*storage.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Report), args.Error(1)
}

func (m *MockMetricsSaver) SaveMetrics(ctx context.Context, reportID int64, metrics []storage.MetricRow) error {
	return m.Called(ctx, reportID, metrics).Error(0)
}

func serve(saver MetricsSaver, path, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Post("/metrics/{report_id}", IngestMetrics(slog.Default(), saver))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rr
}

const twoRows = `[
	{"date":"2026-01-14","operator":"Ann","machine":"M-1","part_number":"P-1","shift":"1","availability":0.9,"performance":0.8,"quality":0.99,"oee":0.7128,"good_count":99,"reject_count":1,"target_count":120},
	{"date":"2026-01-14","operator":"Bob","machine":"M-2","part_number":"P-2","shift":"2","availability":0.8,"performance":0.9,"quality":0.95,"oee":0.684,"good_count":95,"reject_count":5,"target_count":110}
]`

func TestIngestMetrics_Success(t *testing.T) {
	saver := new(MockMetricsSaver)
	saver.On("GetReport", mock.Anything, int64(3)).Return(&storage.Report{ID: 3}, nil)
	saver.On("SaveMetrics", mock.Anything, int64(3), mock.MatchedBy(func(rows []storage.MetricRow) bool {
		return len(rows) == 2 && rows[0].ReportID == 3 && rows[1].ReportID == 3 && rows[1].Operator == "Bob"
	})).Return(nil)

	rr := serve(saver, "/metrics/3", twoRows)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got Response
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, Response{ReportID: 3, Rows: 2}, got)
	saver.AssertExpectations(t)
}

func TestIngestMetrics_UnknownReport(t *testing.T) {
	saver := new(MockMetricsSaver)
	saver.On("GetReport", mock.Anything, int64(8)).Return(nil, storage.ErrNotFound)

	rr := serve(saver, "/metrics/8", twoRows)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	saver.AssertNotCalled(t, "SaveMetrics", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestMetrics_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "negative rate", body: `[{"date":"2026-01-14","oee":-0.1}]`},
		{name: "negative count", body: `[{"date":"2026-01-14","good_count":-1}]`},
		{name: "bad date", body: `[{"date":"14.01.2026"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := new(MockMetricsSaver)
			assert.Equal(t, http.StatusBadRequest, serve(saver, "/metrics/3", tt.body).Code)
			saver.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything)
		})
	}
}

func TestIngestMetrics_SaveFailure(t *testing.T) {
	saver := new(MockMetricsSaver)
	saver.On("GetReport", mock.Anything, int64(3)).Return(&storage.Report{ID: 3}, nil)
	saver.On("SaveMetrics", mock.Anything, int64(3), mock.Anything).Return(errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, serve(saver, "/metrics/3", twoRows).Code)
}
