package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/demand-service/internal/domain"
)

var projectColumns = []string{"id", "name", "area", "created_at"}

type projectRepository struct {
	db DBTX
}

// NewProjectRepository returns a Postgres-backed implementation.
func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	query, args, err := psql.Insert("projects").
		Columns(projectColumns...).
		Values(project.ID, project.Name, project.Area, project.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert project query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query, args, err := psql.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select project query: %w", err)
	}
	var project domain.Project
	if err := pgxscan.Get(ctx, r.db, &project, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, memberOf *string) ([]domain.Project, error) {
	qb := psql.Select(projectColumns...).From("projects")
	if memberOf != nil {
		qb = qb.Where("id IN (SELECT project_id FROM project_members WHERE user_id = ?)", *memberOf)
	}
	query, args, err := qb.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list projects query: %w", err)
	}
	projects := []domain.Project{}
	if err := pgxscan.Select(ctx, r.db, &projects, query, args...); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) AddMember(ctx context.Context, membership *domain.Membership) error {
	query, args, err := psql.Insert("project_members").
		Columns("project_id", "user_id", "created_at").
		Values(membership.ProjectID, membership.UserID, membership.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert member query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	query, args, err := psql.Delete("project_members").
		Where(sq.Eq{"project_id": projectID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete member query: %w", err)
	}
	_, err = r.db.Exec(ctx, query, args...)
	return mapPgError(err)
}

func (r *projectRepository) ListMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	query, args, err := psql.Select("u.id", "u.name", "u.email", "u.password_hash", "u.role", "u.created_at").
		From("users u").
		Join("project_members m ON m.user_id = u.id").
		Where(sq.Eq{"m.project_id": projectID}).
		OrderBy("u.name", "u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list members query: %w", err)
	}
	users := []domain.User{}
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}
