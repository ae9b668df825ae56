package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/repository"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

// ProjectService manages projects and their participants.
type ProjectService struct {
	projects   repository.ProjectRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ProjectDependencies bundles collaborators for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateProject registers a new project.
func (s *ProjectService) CreateProject(ctx context.Context, session domain.Session, name, area string) (*domain.Project, error) {
	if err := requireAdministrator(session, "create projects"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	area = strings.TrimSpace(area)
	if err := requireFields(map[string]string{"name": name, "area": area}); err != nil {
		return nil, err
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Area:      area,
		CreatedAt: s.now(),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, mapRepoError(err, "project", nil)
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventProjectCreated,
		SubjectID: project.ID,
		Actor:     events.ActorFromSession(session),
		Payload:   events.ProjectCreatedPayload{Name: project.Name, Area: project.Area},
	})
	return project, nil
}

// ListProjects returns the projects visible to the caller. Administrators only see
// projects they participate in; every other role sees all of them.
func (s *ProjectService) ListProjects(ctx context.Context, session domain.Session) ([]domain.Project, error) {
	var memberOf *string
	if session.IsAdministrator() {
		id := session.UserID
		memberOf = &id
	}
	projects, err := s.projects.List(ctx, memberOf)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// AddMember adds a user to a project. Adding an existing pair is a conflict.
func (s *ProjectService) AddMember(ctx context.Context, session domain.Session, projectID, userID string) error {
	if err := requireAdministrator(session, "manage project members"); err != nil {
		return err
	}
	if err := s.ensureProjectAndUser(ctx, projectID, userID); err != nil {
		return err
	}
	membership := &domain.Membership{ProjectID: projectID, UserID: userID, CreatedAt: s.now()}
	if err := s.projects.AddMember(ctx, membership); err != nil {
		details := map[string]any{"project_id": projectID, "user_id": userID}
		if errors.Is(err, repository.ErrConflict) {
			return apperrors.NewConflict("user already participates in project", details)
		}
		return mapRepoError(err, "membership", details)
	}
	s.publishMembership(ctx, session, projectID, userID, true)
	return nil
}

// RemoveMember removes a user from a project. Removing an absent pair is a no-op.
func (s *ProjectService) RemoveMember(ctx context.Context, session domain.Session, projectID, userID string) error {
	if err := requireAdministrator(session, "manage project members"); err != nil {
		return err
	}
	if err := s.ensureProjectAndUser(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.projects.RemoveMember(ctx, projectID, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishMembership(ctx, session, projectID, userID, false)
	return nil
}

// ListMembers returns the participants of a project.
func (s *ProjectService) ListMembers(ctx context.Context, session domain.Session, projectID string) ([]domain.User, error) {
	if err := requireAdministrator(session, "list project members"); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": projectID})
	}
	members, err := s.projects.ListMembers(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if members == nil {
		members = []domain.User{}
	}
	return members, nil
}

func (s *ProjectService) ensureProjectAndUser(ctx context.Context, projectID, userID string) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return mapRepoError(err, "project", map[string]any{"project_id": projectID})
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return mapRepoError(err, "user", map[string]any{"user_id": userID})
	}
	return nil
}

func (s *ProjectService) publishMembership(ctx context.Context, session domain.Session, projectID, userID string, added bool) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventMembershipChanged,
		SubjectID: projectID,
		Actor:     events.ActorFromSession(session),
		Payload:   events.MembershipChangedPayload{UserID: userID, Added: added},
	})
}
