package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oee-board/internal/storage"
)

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	const op = "storage.sqlstore.GetUserByEmail"

	var u storage.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, role, is_pro, is_active FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.IsPro, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: user %q: %w", op, email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: user %q: %w", op, email, err)
	}

	return &u, nil
}

// EnsureUser creates the user when the email is not registered yet and
// returns the stored row either way.
func (s *Storage) EnsureUser(ctx context.Context, u storage.User) (*storage.User, error) {
	const op = "storage.sqlstore.EnsureUser"

	existing, err := s.GetUserByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, hashed_password, role, is_pro, is_active) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.HashedPassword, u.Role, u.IsPro, u.IsActive)
	if err != nil {
		return nil, fmt.Errorf("%s: insert %q: %w", op, u.Email, err)
	}

	return s.GetUserByEmail(ctx, u.Email)
}
