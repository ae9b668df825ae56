// Package sqlite implements the repositories on a modernc.org/sqlite database/sql handle.
package sqlite

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/spec-kit/demand-service/internal/repository"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store exposes the repositories backed by one database handle.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database. Migrations must already be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository       { return &userRepo{db: s.db} }
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{db: s.db} }
func (s *Store) Requests() repository.RequestRepository { return &requestRepo{db: s.db} }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.Join(repository.ErrConflict, err)
		}
	}
	return err
}
