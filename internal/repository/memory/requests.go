package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

type requestRepo struct {
	s *Store
}

func (r *requestRepo) Create(ctx context.Context, request *domain.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(request.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.s.requests[request.ID]; exists {
		return repository.ErrConflict
	}
	if _, ok := r.s.users[request.RequesterID]; !ok {
		return repository.ErrConflict
	}
	if _, ok := r.s.projects[request.ProjectID]; !ok {
		return repository.ErrConflict
	}
	stored := *request
	stored.GranteeID = copyString(request.GranteeID)
	r.s.requests[request.ID] = stored
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	req.GranteeID = copyString(req.GranteeID)
	return &req, nil
}

func (r *requestRepo) ListAll(ctx context.Context) ([]domain.Request, error) {
	return r.list(func(domain.Request) bool { return true }), nil
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.Request, error) {
	return r.list(func(req domain.Request) bool { return req.RequesterID == requesterID }), nil
}

func (r *requestRepo) ListByGrantee(ctx context.Context, granteeID string) ([]domain.Request, error) {
	return r.list(func(req domain.Request) bool {
		return req.GranteeID != nil && *req.GranteeID == granteeID
	}), nil
}

func (r *requestRepo) list(match func(domain.Request) bool) []domain.Request {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Request, 0)
	for _, req := range r.s.requests {
		if match(req) {
			req.GranteeID = copyString(req.GranteeID)
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, granteeID *string) error {
	return r.update(id, func(req *domain.Request) {
		req.Status = status
		req.GranteeID = copyString(granteeID)
	}, granteeID)
}

func (r *requestRepo) UpdateGrantee(ctx context.Context, id string, granteeID *string) error {
	return r.update(id, func(req *domain.Request) {
		req.GranteeID = copyString(granteeID)
	}, granteeID)
}

func (r *requestRepo) update(id string, apply func(*domain.Request), granteeID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if granteeID != nil {
		if _, ok := r.s.users[*granteeID]; !ok {
			return repository.ErrConflict
		}
	}
	apply(&req)
	req.UpdatedAt = r.s.now()
	r.s.requests[id] = req
	return nil
}
