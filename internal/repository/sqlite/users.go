package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query, args, err := builder.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert user query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *userRepo) getOne(ctx context.Context, pred sq.Eq) (*domain.User, error) {
	query, args, err := builder.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select user query: %w", err)
	}
	var user domain.User
	if err := sqlscan.Get(ctx, r.db, &user, query, args...); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query, args, err := builder.Select(userColumns...).
		From("users").
		Where(sq.Eq{"role": role}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list users query: %w", err)
	}
	users := []domain.User{}
	if err := sqlscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	query, args, err := builder.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete user query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
