package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

var requestColumns = []string{
	"id", "title", "description", "requester_id", "project_id",
	"status", "grantee_id", "created_at", "updated_at",
}

type requestRepo struct {
	db *sql.DB
}

func (r *requestRepo) Create(ctx context.Context, request *domain.Request) error {
	query, args, err := builder.Insert("requests").
		Columns(requestColumns...).
		Values(
			request.ID,
			request.Title,
			request.Description,
			request.RequesterID,
			request.ProjectID,
			request.Status,
			request.GranteeID,
			request.CreatedAt,
			request.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert request query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query, args, err := builder.Select(requestColumns...).From("requests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select request query: %w", err)
	}
	var request domain.Request
	if err := sqlscan.Get(ctx, r.db, &request, query, args...); err != nil {
		return nil, mapError(err)
	}
	return &request, nil
}

func (r *requestRepo) ListAll(ctx context.Context) ([]domain.Request, error) {
	return r.list(ctx, nil)
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.Request, error) {
	return r.list(ctx, sq.Eq{"requester_id": requesterID})
}

func (r *requestRepo) ListByGrantee(ctx context.Context, granteeID string) ([]domain.Request, error) {
	return r.list(ctx, sq.Eq{"grantee_id": granteeID})
}

func (r *requestRepo) list(ctx context.Context, pred sq.Sqlizer) ([]domain.Request, error) {
	qb := builder.Select(requestColumns...).From("requests")
	if pred != nil {
		qb = qb.Where(pred)
	}
	query, args, err := qb.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list requests query: %w", err)
	}
	requests := []domain.Request{}
	if err := sqlscan.Select(ctx, r.db, &requests, query, args...); err != nil {
		return nil, mapError(err)
	}
	return requests, nil
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, granteeID *string) error {
	return r.update(ctx, id, map[string]any{"status": status, "grantee_id": granteeID})
}

func (r *requestRepo) UpdateGrantee(ctx context.Context, id string, granteeID *string) error {
	return r.update(ctx, id, map[string]any{"grantee_id": granteeID})
}

func (r *requestRepo) update(ctx context.Context, id string, values map[string]any) error {
	values["updated_at"] = time.Now().UTC()
	query, args, err := builder.Update("requests").
		SetMap(values).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update request query: %w", err)
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
