package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/demand-service/internal/config"
	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/observability"
	"github.com/spec-kit/demand-service/internal/repository/memory"
)

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	published  []events.Event
	requests   *RequestService
	projects   *ProjectService
	auth       *AuthService
	users      *UserService

	admin     domain.Session
	requester domain.Session
	other     domain.Session
	grantee   domain.Session
	project   *domain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	})
	metrics := observability.NewMetrics()
	f.requests = NewRequestService(RequestDependencies{
		RequestRepo: f.store.Requests(),
		ProjectRepo: f.store.Projects(),
		UserRepo:    f.store.Users(),
		Dispatcher:  f.dispatcher,
		Metrics:     metrics,
	})
	f.projects = NewProjectService(ProjectDependencies{
		ProjectRepo: f.store.Projects(),
		UserRepo:    f.store.Users(),
		Dispatcher:  f.dispatcher,
	})
	f.auth = NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		AuthDependencies{UserRepo: f.store.Users(), Dispatcher: f.dispatcher, Metrics: metrics})
	f.users = NewUserService(UserDependencies{UserRepo: f.store.Users(), Dispatcher: f.dispatcher})

	f.admin = f.addUser(t, "admin", domain.RoleAdministrator)
	f.requester = f.addUser(t, "req", domain.RoleRequester)
	f.other = f.addUser(t, "req2", domain.RoleRequester)
	f.grantee = f.addUser(t, "gra", domain.RoleGrantee)

	project, err := f.projects.CreateProject(context.Background(), f.admin, "Portal", "Web")
	require.NoError(t, err)
	f.project = project
	f.published = nil
	return f
}

func (f *fixture) addUser(t *testing.T, id string, role domain.Role) domain.Session {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), &domain.User{
		ID:        id,
		Name:      id,
		Email:     id + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}))
	return domain.Session{UserID: id, Role: role}
}

func (f *fixture) createRequest(t *testing.T, session domain.Session, title string) *domain.Request {
	t.Helper()
	request, err := f.requests.CreateRequest(context.Background(), session, CreateRequestInput{
		Title:       title,
		Description: "details for " + title,
		ProjectID:   f.project.ID,
	})
	require.NoError(t, err)
	return request
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}
