package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"oee-board/internal/config"
)

type Storage struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.sqlstore.New"

	var (
		db  *sql.DB
		err error
	)

	switch cfg.DBDriver {
	case config.DriverMySQL:
		dsn := mysql.NewConfig()
		dsn.User = cfg.DBUser
		dsn.Passwd = cfg.DBPassword
		dsn.Net = "tcp"
		dsn.Addr = fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort)
		dsn.DBName = cfg.DBName
		dsn.ParseTime = cfg.ParseTime
		db, err = sql.Open("mysql", dsn.FormatDSN())
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", cfg.StoragePath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	default:
		return nil, fmt.Errorf("%s: unknown db driver %q", op, cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return NewWithDB(db, cfg.DBDriver), nil
}

// NewWithDB wraps an open handle. dialect is config.DriverMySQL or config.DriverSQLite.
func NewWithDB(db *sql.DB, dialect string) *Storage {
	return &Storage{db: db, dialect: dialect, now: time.Now}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id {{pk}},
		filename VARCHAR(255) NOT NULL,
		uploaded_by BIGINT NOT NULL DEFAULT 0,
		uploaded_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS report_entries (
		id {{pk}},
		report_id BIGINT NOT NULL,
		entry_date VARCHAR(10) NOT NULL,
		shift VARCHAR(64) NOT NULL DEFAULT '',
		operator VARCHAR(255) NOT NULL DEFAULT '',
		machine VARCHAR(255) NOT NULL DEFAULT '',
		part_number VARCHAR(255) NOT NULL DEFAULT '',
		job VARCHAR(255) NOT NULL DEFAULT '',
		good_count INTEGER NOT NULL DEFAULT 0,
		reject_count INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		run_time_min DOUBLE NOT NULL DEFAULT 0,
		downtime_min DOUBLE NOT NULL DEFAULT 0,
		planned_production_time_min DOUBLE NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS oee_metrics (
		id {{pk}},
		report_id BIGINT NOT NULL,
		entry_date VARCHAR(10) NOT NULL,
		operator VARCHAR(255) NOT NULL DEFAULT '',
		machine VARCHAR(255) NOT NULL DEFAULT '',
		part_number VARCHAR(255) NOT NULL DEFAULT '',
		job VARCHAR(255) NOT NULL DEFAULT '',
		shift VARCHAR(64) NOT NULL DEFAULT '',
		availability DOUBLE NOT NULL DEFAULT 0,
		performance DOUBLE NOT NULL DEFAULT 0,
		quality DOUBLE NOT NULL DEFAULT 0,
		oee DOUBLE NOT NULL DEFAULT 0,
		good_count INTEGER NOT NULL DEFAULT 0,
		reject_count INTEGER NOT NULL DEFAULT 0,
		target_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		setting_key VARCHAR(64) NOT NULL PRIMARY KEY,
		setting_value VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		email VARCHAR(255) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'analyst',
		is_pro BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

// Migrate creates the tables that do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.sqlstore.Migrate"

	pk := "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	if s.dialect == config.DriverSQLite {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{pk}}", pk)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
