// Package client talks to the OEE backend on behalf of oeectl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/auth"
	"oee-board/internal/service/export"
	"oee-board/internal/storage"
)

var (
	ErrUnauthorized       = errors.New("not authenticated, run `oeectl login`")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Is lets a 404 match storage.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return e.Code == http.StatusNotFound && target == storage.ErrNotFound
}

type Client struct {
	baseURL string
	session auth.Session
	http    *http.Client
	log     *slog.Logger
}

func New(log *slog.Logger, baseURL string, session auth.Session, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) Session() auth.Session {
	return c.session
}

// roundTrip builds and performs the request without looking at the status.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("request", slog.String("method", method), slog.String("url", u))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return resp, nil
}

// send performs the request and returns the response when the status is 2xx.
// A 401 drops the stored session. The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	resp, err := c.roundTrip(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.session.Logout(); err != nil {
			c.log.Warn("failed to clear session", slog.String("error", err.Error()))
		}
		return nil, ErrUnauthorized
	}

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// checkStatus closes the body and returns a *StatusError for a non-2xx answer.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := render.DecodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	const op = "client.Login"

	form := url.Values{"username": {username}, "password": {password}}
	resp, err := c.roundTrip(ctx, http.MethodPost, "/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// A rejected password leaves the current session alone.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var tok tokenResponse
	if err := render.DecodeJSON(resp.Body, &tok); err != nil {
		return fmt.Errorf("%s: decode token: %w", op, err)
	}

	if err := c.session.Login(tok.AccessToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Compare fetches the per-group averages the leaderboard ranks.
func (c *Client) Compare(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error) {
	const op = "client.Compare"

	q := url.Values{"group_by": {string(f.GroupBy)}}
	if f.From != "" {
		q.Set("start_date", f.From)
	}
	if f.To != "" {
		q.Set("end_date", f.To)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var records []storage.OperatorRecord
	if err := c.do(ctx, http.MethodGet, "/analytics/compare", q, nil, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

// Stats fetches the KPI snapshot. reportID 0 selects the latest report.
func (c *Client) Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error) {
	const op = "client.Stats"

	var q url.Values
	if reportID > 0 {
		q = url.Values{"report_id": {strconv.FormatInt(reportID, 10)}}
	}

	var st storage.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/metrics/stats", q, nil, &st); err != nil {
		return storage.DashboardStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

func (c *Client) Reports(ctx context.Context) ([]storage.Report, error) {
	const op = "client.Reports"

	var reports []storage.Report
	if err := c.do(ctx, http.MethodGet, "/reports/", nil, nil, &reports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reports, nil
}

func (c *Client) ListEntries(ctx context.Context, reportID int64) ([]storage.ReportEntry, error) {
	const op = "client.ListEntries"

	var entries []storage.ReportEntry
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reports/%d/entries", reportID), nil, nil, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (c *Client) CreateEntry(ctx context.Context, reportID int64, u storage.EntryUpdate) (*storage.ReportEntry, error) {
	const op = "client.CreateEntry"

	var e storage.ReportEntry
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reports/%d/entries", reportID), nil, u, &e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id int64, u storage.EntryUpdate) (*storage.ReportEntry, error) {
	const op = "client.UpdateEntry"

	var e storage.ReportEntry
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/reports/entries/%d", id), nil, u, &e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	const op = "client.DeleteEntry"

	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/reports/entries/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type uploadResponse struct {
	ReportID int64 `json:"report_id"`
	Rows     int   `json:"rows"`
}

// Upload sends a CSV or XLSX extract and returns the id of the created report.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (int64, error) {
	const op = "client.Upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return 0, fmt.Errorf("%s: read %q: %w", op, filename, err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/reports/upload", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := render.DecodeJSON(resp.Body, &out); err != nil {
		return 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	return out.ReportID, nil
}

// Export downloads the report export into w and returns the attachment filename.
func (c *Client) Export(ctx context.Context, reportID int64, format string, w io.Writer) (string, error) {
	const op = "client.Export"

	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/reports/%d/export", reportID),
		url.Values{"format": {format}}, nil, "")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("%s: copy body: %w", op, err)
	}

	return attachmentName(resp.Header.Get("Content-Disposition"), export.Filename(reportID, format)), nil
}

func attachmentName(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}
