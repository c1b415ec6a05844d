package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oee-board/internal/storage"
)

// CreateReport stores the report header and all of its entries in one transaction.
func (s *Storage) CreateReport(ctx context.Context, report storage.Report, entries []storage.ReportEntry) (int64, error) {
	const op = "storage.sqlstore.CreateReport"

	if report.UploadedAt.IsZero() {
		report.UploadedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reports (filename, uploaded_by, uploaded_at) VALUES (?, ?, ?)`,
		report.Filename, report.UploadedBy, report.UploadedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("%s: insert report %q: %w", op, report.Filename, err)
	}

	reportID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEntrySQL)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare entries: %w", op, err)
	}
	defer stmt.Close()

	for i, e := range entries {
		e.ReportID = reportID
		if _, err := stmt.ExecContext(ctx, entryArgs(e)...); err != nil {
			return 0, fmt.Errorf("%s: insert entry %d: %w", op, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return reportID, nil
}

func (s *Storage) ListReports(ctx context.Context) ([]storage.Report, error) {
	const op = "storage.sqlstore.ListReports"

	return s.queryReports(ctx, op,
		`SELECT id, filename, uploaded_by, uploaded_at FROM reports ORDER BY uploaded_at DESC, id DESC`)
}

// RecentReports returns the newest n reports, newest first.
func (s *Storage) RecentReports(ctx context.Context, n int) ([]storage.Report, error) {
	const op = "storage.sqlstore.RecentReports"

	return s.queryReports(ctx, op,
		`SELECT id, filename, uploaded_by, uploaded_at FROM reports ORDER BY uploaded_at DESC, id DESC LIMIT ?`, n)
}

func (s *Storage) queryReports(ctx context.Context, op, query string, args ...any) ([]storage.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reports := []storage.Report{}
	for rows.Next() {
		var (
			r          storage.Report
			uploadedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Filename, &r.UploadedBy, &uploadedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		r.UploadedAt = time.Unix(uploadedAt, 0).UTC()
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return reports, nil
}

func (s *Storage) GetReport(ctx context.Context, id int64) (*storage.Report, error) {
	const op = "storage.sqlstore.GetReport"

	var (
		r          storage.Report
		uploadedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, uploaded_by, uploaded_at FROM reports WHERE id = ?`, id).
		Scan(&r.ID, &r.Filename, &r.UploadedBy, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, id, err)
	}
	r.UploadedAt = time.Unix(uploadedAt, 0).UTC()

	return &r, nil
}

// LatestReport returns the most recently uploaded report.
func (s *Storage) LatestReport(ctx context.Context) (*storage.Report, error) {
	const op = "storage.sqlstore.LatestReport"

	reports, err := s.RecentReports(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &reports[0], nil
}

func (s *Storage) RenameReport(ctx context.Context, id int64, filename string) (*storage.Report, error) {
	const op = "storage.sqlstore.RenameReport"

	if _, err := s.GetReport(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE reports SET filename = ? WHERE id = ?`, filename, id); err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, id, err)
	}

	return s.GetReport(ctx, id)
}

// DeleteReport removes the report together with its entries and metrics.
func (s *Storage) DeleteReport(ctx context.Context, id int64) error {
	const op = "storage.sqlstore.DeleteReport"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM oee_metrics WHERE report_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete metrics of report id=%d: %w", op, id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM report_entries WHERE report_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete entries of report id=%d: %w", op, id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete report id=%d: %w", op, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: report id=%d: %w", op, id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
