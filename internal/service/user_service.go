package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/repository"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

// UserService exposes administrative user management.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// ListUsers returns the users holding role, ordered by name.
func (s *UserService) ListUsers(ctx context.Context, session domain.Session, role string) ([]domain.User, error) {
	if err := requireAdministrator(session, "list users"); err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{
			"role":    role,
			"allowed": domain.Roles(),
		})
	}
	users, err := s.users.ListByRole(ctx, parsed)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// RemoveUser deletes an account. Users who still own requests cannot be removed.
func (s *UserService) RemoveUser(ctx context.Context, session domain.Session, userID string) error {
	if err := requireAdministrator(session, "remove users"); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapRepoError(err, "user", map[string]any{"user_id": userID})
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return apperrors.NewConflict("user still owns requests", map[string]any{"user_id": userID})
		}
		return mapRepoError(err, "user", map[string]any{"user_id": userID})
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserRemoved,
		SubjectID: userID,
		Actor:     events.ActorFromSession(session),
		Payload:   events.UserPayload{Email: user.Email, Role: user.Role},
	})
	return nil
}
