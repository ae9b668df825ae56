package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

type projectRepo struct {
	s *Store
}

func (r *projectRepo) Create(ctx context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(project.ID) == "" {
		return errors.New("project id required")
	}
	if _, exists := r.s.projects[project.ID]; exists {
		return repository.ErrConflict
	}
	r.s.projects[project.ID] = *project
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, memberOf *string) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Project, 0)
	for _, p := range r.s.projects {
		if memberOf != nil {
			if _, ok := r.s.members[membershipKey{projectID: p.ID, userID: *memberOf}]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (r *projectRepo) AddMember(ctx context.Context, membership *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[membership.ProjectID]; !ok {
		return repository.ErrConflict
	}
	if _, ok := r.s.users[membership.UserID]; !ok {
		return repository.ErrConflict
	}
	key := membershipKey{projectID: membership.ProjectID, userID: membership.UserID}
	if _, exists := r.s.members[key]; exists {
		return repository.ErrConflict
	}
	r.s.members[key] = *membership
	return nil
}

func (r *projectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.members, membershipKey{projectID: projectID, userID: userID})
	return nil
}

func (r *projectRepo) ListMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0)
	for key := range r.s.members {
		if key.projectID != projectID {
			continue
		}
		if u, ok := r.s.users[key.userID]; ok {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}
