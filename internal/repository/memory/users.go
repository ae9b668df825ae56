package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(user.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.s.users[user.ID]; exists {
		return repository.ErrConflict
	}
	if _, exists := r.s.emails[user.Email]; exists {
		return repository.ErrConflict
	}
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

// Delete mirrors the SQL schema: memberships cascade, grantee references are cleared,
// and a user who still owns requests cannot be removed.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, req := range r.s.requests {
		if req.RequesterID == id {
			return repository.ErrConflict
		}
	}
	for key := range r.s.members {
		if key.userID == id {
			delete(r.s.members, key)
		}
	}
	for reqID, req := range r.s.requests {
		if req.GranteeID != nil && *req.GranteeID == id {
			req.GranteeID = nil
			r.s.requests[reqID] = req
		}
	}
	delete(r.s.emails, u.Email)
	delete(r.s.users, id)
	return nil
}
