package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

var gooseMu sync.Mutex

// RunMigrations applies the embedded Postgres migrations through the pgx pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return applyMigrations(ctx, db, "postgres", "migrations/postgres", logger)
}

// RunSQLiteMigrations applies the embedded SQLite migrations.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if db == nil {
		logger.Warn("no sqlite handle available; skipping migrations")
		return nil
	}
	return applyMigrations(ctx, db, "sqlite3", "migrations/sqlite", logger)
}

func applyMigrations(ctx context.Context, db *sql.DB, dialect, dir string, logger *zap.Logger) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect %s: %w", dialect, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations %s: %w", dir, err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", zap.String("dialect", dialect), zap.Int64("version", version))
	return nil
}
