package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/demand-service/internal/domain"
)

var requestColumns = []string{
	"id", "title", "description", "requester_id", "project_id",
	"status", "grantee_id", "created_at", "updated_at",
}

type requestRepository struct {
	db  DBTX
	now func() time.Time
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(db DBTX) RequestRepository {
	return &requestRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.Request) error {
	query, args, err := psql.Insert("requests").
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
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query, args, err := psql.Select(requestColumns...).From("requests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select request query: %w", err)
	}
	var request domain.Request
	if err := pgxscan.Get(ctx, r.db, &request, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]domain.Request, error) {
	return r.list(ctx, nil)
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Request, error) {
	return r.list(ctx, sq.Eq{"requester_id": requesterID})
}

func (r *requestRepository) ListByGrantee(ctx context.Context, granteeID string) ([]domain.Request, error) {
	return r.list(ctx, sq.Eq{"grantee_id": granteeID})
}

func (r *requestRepository) list(ctx context.Context, pred sq.Sqlizer) ([]domain.Request, error) {
	qb := psql.Select(requestColumns...).From("requests")
	if pred != nil {
		qb = qb.Where(pred)
	}
	query, args, err := qb.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list requests query: %w", err)
	}
	requests := []domain.Request{}
	if err := pgxscan.Select(ctx, r.db, &requests, query, args...); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, granteeID *string) error {
	return r.update(ctx, id, map[string]any{"status": status, "grantee_id": granteeID})
}

func (r *requestRepository) UpdateGrantee(ctx context.Context, id string, granteeID *string) error {
	return r.update(ctx, id, map[string]any{"grantee_id": granteeID})
}

func (r *requestRepository) update(ctx context.Context, id string, values map[string]any) error {
	values["updated_at"] = r.now()
	query, args, err := psql.Update("requests").
		SetMap(values).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update request query: %w", err)
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
