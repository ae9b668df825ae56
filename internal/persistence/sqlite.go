package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/spec-kit/demand-service/internal/config"
)

// SQLite wraps a database/sql handle opened with the modernc driver.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database file with foreign keys enforced.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	logger.Info("opened sqlite database", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

func sqliteDSN(cfg config.SQLiteConfig) (string, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "", errors.New("sqlite path not provided")
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	if cfg.BusyTimeoutMilli > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMilli))
	}
	params.Add("_time_format", "sqlite")
	return "file:" + path + "?" + params.Encode(), nil
}

// Close releases the handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("sqlite not configured")
	}
	return s.DB.PingContext(ctx)
}
