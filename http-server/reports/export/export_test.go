package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oee-board/internal/service/export"
)

type MockReportExporter struct {
	mock.Mock
}

func (m *MockReportExporter) Export(ctx context.Context, reportID int64, format string) (*export.File, error) {
	args := m.Called(ctx, reportID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.File), args.Error(1)
}

func serve(exporter ReportExporter, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/reports/{id}/export", ExportReport(slog.Default(), exporter))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestExportReport_DefaultsToCSV(t *testing.T) {
	exporter := new(MockReportExporter)
	exporter.On("Export", mock.Anything, int64(5), export.FormatCSV).Return(&export.File{
		Name: "report_5_export.csv", ContentType: export.ContentTypeCSV, Data: []byte("id\n1\n"),
	}, nil)

	rr := serve(exporter, "/reports/5/export")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=report_5_export.csv", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, export.ContentTypeCSV, rr.Header().Get("Content-Type"))
	assert.Equal(t, "id\n1\n", rr.Body.String())
}

func TestExportReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad format", err: fmt.Errorf("op: %w", export.ErrInvalidFormat), want: http.StatusBadRequest},
		{name: "empty", err: fmt.Errorf("op: %w", export.ErrEmptyReport), want: http.StatusNotFound},
		{name: "failure", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := new(MockReportExporter)
			exporter.On("Export", mock.Anything, int64(5), "xlsx").Return(nil, tt.err)

			assert.Equal(t, tt.want, serve(exporter, "/reports/5/export?format=xlsx").Code)
		})
	}
}
