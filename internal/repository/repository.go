package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/demand-service/internal/domain"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a write violates a uniqueness or reference constraint.
	ErrConflict = errors.New("repository: conflict")
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository defines persistence access for projects and their members.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// List returns every project, or only those memberOf participates in when non-nil.
	List(ctx context.Context, memberOf *string) ([]domain.Project, error)
	AddMember(ctx context.Context, membership *domain.Membership) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListMembers(ctx context.Context, projectID string) ([]domain.User, error)
}

// RequestRepository encapsulates request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	ListAll(ctx context.Context) ([]domain.Request, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.Request, error)
	ListByGrantee(ctx context.Context, granteeID string) ([]domain.Request, error)
	// UpdateStatus sets status and overwrites the grantee, clearing it when granteeID is nil.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, granteeID *string) error
	UpdateGrantee(ctx context.Context, id string, granteeID *string) error
}

// DBTX is the subset of pgxpool.Pool used by the Postgres repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
