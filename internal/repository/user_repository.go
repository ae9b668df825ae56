package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/demand-service/internal/domain"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert user query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *userRepository) getOne(ctx context.Context, pred sq.Eq) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select user query: %w", err)
	}
	var user domain.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"role": role}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list users query: %w", err)
	}
	users := []domain.User{}
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete user query: %w", err)
	}
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
