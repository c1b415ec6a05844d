package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oee-board/internal/storage"
)

func (s *Storage) ListSettings(ctx context.Context) ([]storage.Setting, error) {
	const op = "storage.sqlstore.ListSettings"

	rows, err := s.db.QueryContext(ctx, `SELECT setting_key, setting_value, description FROM settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	settings := []storage.Setting{}
	for rows.Next() {
		var st storage.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Description); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		settings = append(settings, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return settings, nil
}

func (s *Storage) GetSetting(ctx context.Context, key string) (*storage.Setting, error) {
	const op = "storage.sqlstore.GetSetting"

	var st storage.Setting
	err := s.db.QueryRowContext(ctx,
		`SELECT setting_key, setting_value, description FROM settings WHERE setting_key = ?`, key).
		Scan(&st.Key, &st.Value, &st.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: setting %q: %w", op, key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: setting %q: %w", op, key, err)
	}

	return &st, nil
}

// PutSetting inserts or updates a setting. An empty description keeps the stored one.
func (s *Storage) PutSetting(ctx context.Context, st storage.Setting) (*storage.Setting, error) {
	const op = "storage.sqlstore.PutSetting"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE settings SET setting_value = ?, description = CASE WHEN ? = '' THEN description ELSE ? END
		WHERE setting_key = ?`, st.Value, st.Description, st.Description, st.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: update %q: %w", op, st.Key, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settings (setting_key, setting_value, description) VALUES (?, ?, ?)`,
			st.Key, st.Value, st.Description)
		if err != nil {
			return nil, fmt.Errorf("%s: insert %q: %w", op, st.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return s.GetSetting(ctx, st.Key)
}
