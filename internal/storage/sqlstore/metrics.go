package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"oee-board/internal/storage"
)

// SaveMetrics replaces the metric rows of a report with rows pushed by the calculation engine.
func (s *Storage) SaveMetrics(ctx context.Context, reportID int64, metrics []storage.MetricRow) error {
	const op = "storage.sqlstore.SaveMetrics"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM oee_metrics WHERE report_id = ?`, reportID); err != nil {
		return fmt.Errorf("%s: clear metrics of report id=%d: %w", op, reportID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO oee_metrics
		(report_id, entry_date, operator, machine, part_number, job, shift,
		 availability, performance, quality, oee, good_count, reject_count, target_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for i, m := range metrics {
		_, err := stmt.ExecContext(ctx, reportID, m.Date, m.Operator, m.Machine, m.PartNumber, m.Job, m.Shift,
			m.Availability, m.Performance, m.Quality, m.OEE, m.GoodCount, m.RejectCount, m.TargetCount)
		if err != nil {
			return fmt.Errorf("%s: insert metric %d of report id=%d: %w", op, i, reportID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

const metricColumns = `id, report_id, entry_date, operator, machine, part_number, job, shift,
	availability, performance, quality, oee, good_count, reject_count, target_count`

// ListMetrics returns the metric rows of a report, newest date first.
func (s *Storage) ListMetrics(ctx context.Context, reportID int64) ([]storage.MetricRow, error) {
	const op = "storage.sqlstore.ListMetrics"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+metricColumns+` FROM oee_metrics WHERE report_id = ? ORDER BY entry_date DESC, id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, reportID, err)
	}
	defer rows.Close()

	metrics := []storage.MetricRow{}
	for rows.Next() {
		var m storage.MetricRow
		err := rows.Scan(&m.ID, &m.ReportID, &m.Date, &m.Operator, &m.Machine, &m.PartNumber, &m.Job, &m.Shift,
			&m.Availability, &m.Performance, &m.Quality, &m.OEE, &m.GoodCount, &m.RejectCount, &m.TargetCount)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return metrics, nil
}

// CompareMetrics averages the metric rows per group within an optional date window.
func (s *Storage) CompareMetrics(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error) {
	const op = "storage.sqlstore.CompareMetrics"

	col := f.GroupBy.Column()
	query := fmt.Sprintf(`SELECT CASE WHEN %[1]s = '' THEN 'Unknown' ELSE %[1]s END AS grp_name,
			AVG(oee), AVG(availability), AVG(performance), AVG(quality),
			SUM(good_count + reject_count), SUM(good_count), COUNT(*)
		FROM oee_metrics
		WHERE (? = '' OR entry_date >= ?) AND (? = '' OR entry_date <= ?)
		GROUP BY grp_name
		ORDER BY AVG(oee) DESC, grp_name ASC`, col)

	rows, err := s.db.QueryContext(ctx, query, f.From, f.From, f.To, f.To)
	if err != nil {
		return nil, fmt.Errorf("%s: group by %s: %w", op, col, err)
	}
	defer rows.Close()

	records := []storage.OperatorRecord{}
	for rows.Next() {
		var r storage.OperatorRecord
		err := rows.Scan(&r.Name, &r.OEE, &r.Availability, &r.Performance, &r.Quality,
			&r.TotalProduced, &r.TotalGood, &r.SampleSize)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		r.OEE = round4(r.OEE)
		r.Availability = round4(r.Availability)
		r.Performance = round4(r.Performance)
		r.Quality = round4(r.Quality)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	if f.Limit > 0 && len(records) > f.Limit {
		records = records[:f.Limit]
	}

	return records, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// ReportAverages returns per-report metric means for the given reports, in the order given.
// Reports without metric rows are skipped.
func (s *Storage) ReportAverages(ctx context.Context, reports []storage.Report) ([]storage.Averages, error) {
	const op = "storage.sqlstore.ReportAverages"

	if len(reports) == 0 {
		return []storage.Averages{}, nil
	}

	args := make([]any, len(reports))
	for i, r := range reports {
		args[i] = r.ID
	}

	rows, err := s.db.QueryContext(ctx, `SELECT report_id, AVG(oee), AVG(availability), AVG(performance), AVG(quality), COUNT(*)
		FROM oee_metrics WHERE report_id IN (`+placeholders(len(reports))+`) GROUP BY report_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	byID := make(map[int64]storage.Averages, len(reports))
	for rows.Next() {
		var a storage.Averages
		if err := rows.Scan(&a.ReportID, &a.OEE, &a.Availability, &a.Performance, &a.Quality, &a.Count); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		byID[a.ReportID] = a
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	out := make([]storage.Averages, 0, len(reports))
	for _, r := range reports {
		if a, ok := byID[r.ID]; ok {
			a.UploadedAt = r.UploadedAt
			out = append(out, a)
		}
	}

	return out, nil
}

// ExportRows joins every entry of a report with its metric on part, machine and shift.
func (s *Storage) ExportRows(ctx context.Context, reportID int64) ([]storage.ExportRow, error) {
	const op = "storage.sqlstore.ExportRows"

	rows, err := s.db.QueryContext(ctx, `SELECT
			e.id, e.report_id, e.entry_date, e.shift, e.operator, e.machine, e.part_number, e.job,
			e.good_count, e.reject_count, e.total_count, e.run_time_min, e.downtime_min, e.planned_production_time_min,
			m.id, m.availability, m.performance, m.quality, m.oee, m.target_count
		FROM report_entries e
		LEFT JOIN oee_metrics m
			ON m.report_id = e.report_id AND m.part_number = e.part_number
			AND m.machine = e.machine AND m.shift = e.shift
		WHERE e.report_id = ?
		ORDER BY e.id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, reportID, err)
	}
	defer rows.Close()

	out := []storage.ExportRow{}
	for rows.Next() {
		var (
			r                     storage.ExportRow
			metricID, target      sql.NullInt64
			avail, perf, qual, oe sql.NullFloat64
		)
		err := rows.Scan(&r.ID, &r.ReportID, &r.Date, &r.Shift, &r.Operator, &r.Machine, &r.PartNumber, &r.Job,
			&r.GoodCount, &r.RejectCount, &r.TotalCount, &r.RunTimeMin, &r.DowntimeMin, &r.PlannedProductionTimeMin,
			&metricID, &avail, &perf, &qual, &oe, &target)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if metricID.Valid {
			r.Metric = &storage.MetricRow{
				ID:           metricID.Int64,
				ReportID:     r.ReportID,
				Availability: avail.Float64,
				Performance:  perf.Float64,
				Quality:      qual.Float64,
				OEE:          oe.Float64,
				TargetCount:  int(target.Int64),
			}
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return out, nil
}

// CountMetrics returns the number of metric rows stored across all reports.
func (s *Storage) CountMetrics(ctx context.Context) (int, error) {
	const op = "storage.sqlstore.CountMetrics"

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM oee_metrics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
