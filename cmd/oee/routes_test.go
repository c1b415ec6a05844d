package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-board/http-server/auth/login"
	authn "oee-board/internal/auth"
	"oee-board/internal/config"
	"oee-board/internal/service/export"
	"oee-board/internal/service/stats"
	"oee-board/internal/storage"
	"oee-board/internal/storage/sqlstore"
)

func newTestServer(t *testing.T, mode string) (*httptest.Server, config.Config) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := sqlstore.NewWithDB(db, config.DriverSQLite)
	require.NoError(t, store.Migrate(context.Background()))

	frontend := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<html>spa</html>"), 0o644))

	cfg := config.Config{
		AdminLogin:  "admin@oee.local",
		AdminPass:   "pw",
		Auth:        config.Auth{Mode: mode, JWTSecret: "test-secret", TokenTTL: time.Hour},
		CORSOrigins: []string{"http://localhost:5173"},
		FrontendDir: frontend,
	}
	require.NoError(t, ensureAdmin(context.Background(), store, cfg))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := authn.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	router := routes(cfg, log, store, issuer, stats.NewStatsService(log, store), export.NewExportService(store))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, cfg
}

func do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	return req
}

func TestRoutes_TokenMode(t *testing.T) {
	srv, cfg := newTestServer(t, config.AuthToken)

	resp, _ := do(t, newRequest(t, http.MethodGet, srv.URL+"/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, newRequest(t, http.MethodGet, srv.URL+"/reports/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	form := url.Values{"username": {cfg.AdminLogin}, "password": {cfg.AdminPass}}
	req := newRequest(t, http.MethodPost, srv.URL+"/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, body := do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var token login.Response
	require.NoError(t, render.DecodeJSON(strings.NewReader(body), &token))

	req = newRequest(t, http.MethodGet, srv.URL+"/reports/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, body = do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	req = newRequest(t, http.MethodGet, srv.URL+"/metrics/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, _ = do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_SettingsWriteNeedsAdminLogin(t *testing.T) {
	srv, cfg := newTestServer(t, config.AuthStatic)

	resp, _ := do(t, newRequest(t, http.MethodPut, srv.URL+"/settings/oee_target?value=80", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := newRequest(t, http.MethodPut, srv.URL+"/settings/oee_target?value=80", nil)
	req.SetBasicAuth(cfg.AdminLogin, cfg.AdminPass)
	resp, _ = do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, newRequest(t, http.MethodGet, srv.URL+"/settings/oee_target", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st storage.Setting
	require.NoError(t, render.DecodeJSON(strings.NewReader(body), &st))
	assert.Equal(t, "80", st.Value)
}

func TestRoutes_SPAFallback(t *testing.T) {
	srv, _ := newTestServer(t, config.AuthStatic)

	resp, body := do(t, newRequest(t, http.MethodGet, srv.URL+"/leaderboard/print", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>spa</html>", body)
}
