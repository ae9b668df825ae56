// Package memory provides in-process repository implementations backed by maps.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/repository"
)

type membershipKey struct {
	projectID string
	userID    string
}

// Store holds every entity behind one lock so reference checks stay consistent.
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	emails   map[string]string
	projects map[string]domain.Project
	members  map[membershipKey]domain.Membership
	requests map[string]domain.Request
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		projects: make(map[string]domain.Project),
		members:  make(map[membershipKey]domain.Membership),
		requests: make(map[string]domain.Request),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Projects returns the project repository view of the store.
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s: s} }

// Requests returns the request repository view of the store.
func (s *Store) Requests() repository.RequestRepository { return &requestRepo{s: s} }

func sortUsers(out []domain.User) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
}

func sortProjects(out []domain.Project) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func sortRequests(out []domain.Request) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
