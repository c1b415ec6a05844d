package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oee-board/internal/storage"
)

const entryColumns = `id, report_id, entry_date, shift, operator, machine, part_number, job,
	good_count, reject_count, total_count, run_time_min, downtime_min, planned_production_time_min`

const insertEntrySQL = `INSERT INTO report_entries
	(report_id, entry_date, shift, operator, machine, part_number, job,
	 good_count, reject_count, total_count, run_time_min, downtime_min, planned_production_time_min)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func entryArgs(e storage.ReportEntry) []any {
	return []any{
		e.ReportID, e.Date, e.Shift, e.Operator, e.Machine, e.PartNumber, e.Job,
		e.GoodCount, e.RejectCount, e.TotalCount, e.RunTimeMin, e.DowntimeMin, e.PlannedProductionTimeMin,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (storage.ReportEntry, error) {
	var e storage.ReportEntry
	err := row.Scan(&e.ID, &e.ReportID, &e.Date, &e.Shift, &e.Operator, &e.Machine, &e.PartNumber, &e.Job,
		&e.GoodCount, &e.RejectCount, &e.TotalCount, &e.RunTimeMin, &e.DowntimeMin, &e.PlannedProductionTimeMin)
	return e, err
}

func (s *Storage) ListEntries(ctx context.Context, reportID int64) ([]storage.ReportEntry, error) {
	const op = "storage.sqlstore.ListEntries"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM report_entries WHERE report_id = ? ORDER BY id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, reportID, err)
	}
	defer rows.Close()

	entries := []storage.ReportEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return entries, nil
}

func (s *Storage) GetEntry(ctx context.Context, id int64) (*storage.ReportEntry, error) {
	const op = "storage.sqlstore.GetEntry"

	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM report_entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: entry id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: entry id=%d: %w", op, id, err)
	}

	return &e, nil
}

// CreateEntry adds a manual entry to an existing report.
func (s *Storage) CreateEntry(ctx context.Context, reportID int64, u storage.EntryUpdate) (*storage.ReportEntry, error) {
	const op = "storage.sqlstore.CreateEntry"

	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e := storage.NewManualEntry(reportID, u, s.now())
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, insertEntrySQL, entryArgs(e)...)
	if err != nil {
		return nil, fmt.Errorf("%s: insert entry for report id=%d: %w", op, reportID, err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return &e, nil
}

// UpdateEntry applies a partial update and recomputes the derived totals.
func (s *Storage) UpdateEntry(ctx context.Context, id int64, u storage.EntryUpdate) (*storage.ReportEntry, error) {
	const op = "storage.sqlstore.UpdateEntry"

	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Apply(e)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE report_entries SET
		shift = ?, operator = ?, machine = ?, part_number = ?, job = ?,
		good_count = ?, reject_count = ?, total_count = ?,
		run_time_min = ?, downtime_min = ?, planned_production_time_min = ?
		WHERE id = ?`,
		e.Shift, e.Operator, e.Machine, e.PartNumber, e.Job,
		e.GoodCount, e.RejectCount, e.TotalCount,
		e.RunTimeMin, e.DowntimeMin, e.PlannedProductionTimeMin,
		id)
	if err != nil {
		return nil, fmt.Errorf("%s: entry id=%d: %w", op, id, err)
	}

	return e, nil
}

func (s *Storage) DeleteEntry(ctx context.Context, id int64) error {
	const op = "storage.sqlstore.DeleteEntry"

	res, err := s.db.ExecContext(ctx, `DELETE FROM report_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: entry id=%d: %w", op, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: entry id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}
