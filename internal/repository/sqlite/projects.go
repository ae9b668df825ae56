package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/spec-kit/demand-service/internal/domain"
)

var projectColumns = []string{"id", "name", "area", "created_at"}

type projectRepo struct {
	db *sql.DB
}

func (r *projectRepo) Create(ctx context.Context, project *domain.Project) error {
	query, args, err := builder.Insert("projects").
		Columns(projectColumns...).
		Values(project.ID, project.Name, project.Area, project.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert project query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query, args, err := builder.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select project query: %w", err)
	}
	var project domain.Project
	if err := sqlscan.Get(ctx, r.db, &project, query, args...); err != nil {
		return nil, mapError(err)
	}
	return &project, nil
}

func (r *projectRepo) List(ctx context.Context, memberOf *string) ([]domain.Project, error) {
	qb := builder.Select(projectColumns...).From("projects")
	if memberOf != nil {
		qb = qb.Where("id IN (SELECT project_id FROM project_members WHERE user_id = ?)", *memberOf)
	}
	query, args, err := qb.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list projects query: %w", err)
	}
	projects := []domain.Project{}
	if err := sqlscan.Select(ctx, r.db, &projects, query, args...); err != nil {
		return nil, mapError(err)
	}
	return projects, nil
}

func (r *projectRepo) AddMember(ctx context.Context, membership *domain.Membership) error {
	query, args, err := builder.Insert("project_members").
		Columns("project_id", "user_id", "created_at").
		Values(membership.ProjectID, membership.UserID, membership.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert member query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (r *projectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	query, args, err := builder.Delete("project_members").
		Where(sq.Eq{"project_id": projectID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete member query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (r *projectRepo) ListMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	query, args, err := builder.Select("u.id", "u.name", "u.email", "u.password_hash", "u.role", "u.created_at").
		From("users u").
		Join("project_members m ON m.user_id = u.id").
		Where(sq.Eq{"m.project_id": projectID}).
		OrderBy("u.name", "u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list members query: %w", err)
	}
	users := []domain.User{}
	if err := sqlscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}
