package save

import (
	"context"
	"errors"
	"fmt"
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

type MockEntryCreator struct {
	mock.Mock
}

func (m *MockEntryCreator) CreateEntry(ctx context.Context, reportID int64, u storage.EntryUpdate) (*storage.ReportEntry, error) {
	args := m.Called(ctx, reportID, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ReportEntry), args.Error(1)
}

func serve(creator EntryCreator, path, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Post("/reports/{id}/entries", CreateEntry(slog.Default(), creator))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rr
}

func TestCreateEntry_Success(t *testing.T) {
	creator := new(MockEntryCreator)
	creator.On("CreateEntry", mock.Anything, int64(3), mock.MatchedBy(func(u storage.EntryUpdate) bool {
		return u.Operator != nil && *u.Operator == "New Operator" && u.GoodCount != nil && *u.GoodCount == 0
	})).Return(&storage.ReportEntry{ID: 10, ReportID: 3, Operator: "New Operator"}, nil)

	rr := serve(creator, "/reports/3/entries", `{"operator":"New Operator","good_count":0}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var got storage.ReportEntry
	require.NoError(t, render.DecodeJSON(rr.Body, &got))
	assert.Equal(t, int64(10), got.ID)
}

func TestCreateEntry_EmptyBodyUsesDefaults(t *testing.T) {
	creator := new(MockEntryCreator)
	creator.On("CreateEntry", mock.Anything, int64(3), storage.EntryUpdate{}).
		Return(&storage.ReportEntry{ID: 11, ReportID: 3, Operator: "New Operator"}, nil)

	rr := serve(creator, "/reports/3/entries", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	creator.AssertExpectations(t)
}

func TestCreateEntry_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing report", err: fmt.Errorf("op: %w", storage.ErrNotFound), want: http.StatusNotFound},
		{name: "invalid values", err: fmt.Errorf("op: %w", storage.ErrInvalidRecord), want: http.StatusBadRequest},
		{name: "failure", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockEntryCreator)
			creator.On("CreateEntry", mock.Anything, int64(3), mock.Anything).Return(nil, tt.err)

			assert.Equal(t, tt.want, serve(creator, "/reports/3/entries", `{}`).Code)
		})
	}
}

func TestCreateEntry_BadJSON(t *testing.T) {
	creator := new(MockEntryCreator)
	assert.Equal(t, http.StatusBadRequest, serve(creator, "/reports/3/entries", `{"good_count":"x"}`).Code)
	creator.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}
