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
	"github.com/spec-kit/demand-service/internal/observability"
	"github.com/spec-kit/demand-service/internal/repository"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

// RequestService coordinates the demand request lifecycle.
type RequestService struct {
	requests   repository.RequestRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// CreateRequestInput describes a new demand request.
type CreateRequestInput struct {
	Title       string
	Description string
	ProjectID   string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest files a PENDING request owned by the calling requester.
func (s *RequestService) CreateRequest(ctx context.Context, session domain.Session, input CreateRequestInput) (*domain.Request, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.ProjectID = strings.TrimSpace(input.ProjectID)
	if err := requireFields(map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"project_id":  input.ProjectID,
	}); err != nil {
		return nil, err
	}

	requester, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("requester does not exist", map[string]any{"requester_id": session.UserID})
		}
		return nil, apperrors.MapError(err)
	}
	if requester.Role != domain.RoleRequester {
		return nil, apperrors.NewValidationError("requester id must reference a requester", map[string]any{
			"requester_id": requester.ID,
			"role":         requester.Role,
		})
	}

	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": input.ProjectID})
	}

	now := s.now()
	request := &domain.Request{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		RequesterID: requester.ID,
		ProjectID:   input.ProjectID,
		Status:      domain.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"project_id": input.ProjectID})
	}

	s.metrics.RequestCreated()
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventRequestCreated,
		SubjectID: request.ID,
		Actor:     events.ActorFromSession(session),
		Payload: events.RequestCreatedPayload{
			ProjectID:   request.ProjectID,
			RequesterID: request.RequesterID,
			Title:       request.Title,
		},
	})
	return request, nil
}

// ListRequests returns the requests visible to the caller. Unknown roles see nothing.
func (s *RequestService) ListRequests(ctx context.Context, session domain.Session) ([]domain.Request, error) {
	var (
		requests []domain.Request
		err      error
	)
	switch session.Role {
	case domain.RoleAdministrator:
		requests, err = s.requests.ListAll(ctx)
	case domain.RoleRequester:
		requests, err = s.requests.ListByRequester(ctx, session.UserID)
	case domain.RoleGrantee:
		requests, err = s.requests.ListByGrantee(ctx, session.UserID)
	default:
		return []domain.Request{}, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if requests == nil {
		requests = []domain.Request{}
	}
	return requests, nil
}

// GetRequest returns a single request when the caller may see it.
func (s *RequestService) GetRequest(ctx context.Context, session domain.Session, requestID string) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}
	if !canView(session, request) {
		return nil, apperrors.NewForbidden("request not visible to caller")
	}
	return request, nil
}

func canView(session domain.Session, request *domain.Request) bool {
	switch session.Role {
	case domain.RoleAdministrator:
		return true
	case domain.RoleRequester:
		return request.RequesterID == session.UserID
	case domain.RoleGrantee:
		return request.GranteeID != nil && *request.GranteeID == session.UserID
	}
	return false
}

// UpdateStatus sets the status and overwrites the grantee with granteeID, clearing it when nil.
func (s *RequestService) UpdateStatus(ctx context.Context, session domain.Session, requestID string, status domain.RequestStatus, granteeID *string) (*domain.Request, error) {
	if err := requireAdministrator(session, "update request status"); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid request status", map[string]any{
			"status":  status,
			"allowed": domain.RequestStatuses(),
		})
	}

	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}
	if granteeID != nil {
		if err := s.ensureGrantee(ctx, *granteeID); err != nil {
			return nil, err
		}
	}

	if err := s.requests.UpdateStatus(ctx, requestID, status, granteeID); err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}
	updated, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}

	s.metrics.StatusChanged(status)
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventRequestStatusChanged,
		SubjectID: requestID,
		Actor:     events.ActorFromSession(session),
		Payload: events.RequestStatusChangedPayload{
			OldStatus:  current.Status,
			NewStatus:  updated.Status,
			OldGrantee: current.GranteeID,
			NewGrantee: updated.GranteeID,
		},
	})
	return updated, nil
}

// AssignGrantee sets the grantee of a request, leaving its status unchanged.
func (s *RequestService) AssignGrantee(ctx context.Context, session domain.Session, granteeID, requestID string) (*domain.Request, error) {
	if err := requireAdministrator(session, "assign requests"); err != nil {
		return nil, err
	}
	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}
	if err := s.ensureGrantee(ctx, granteeID); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateGrantee(ctx, requestID, &granteeID); err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}
	updated, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "request", map[string]any{"request_id": requestID})
	}

	s.metrics.GranteeAssigned()
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventRequestAssigned,
		SubjectID: requestID,
		Actor:     events.ActorFromSession(session),
		Payload: events.RequestAssignedPayload{
			OldGrantee: current.GranteeID,
			NewGrantee: granteeID,
		},
	})
	return updated, nil
}

func (s *RequestService) ensureGrantee(ctx context.Context, granteeID string) error {
	user, err := s.users.GetByID(ctx, granteeID)
	if err != nil {
		return mapRepoError(err, "grantee", map[string]any{"grantee_id": granteeID})
	}
	if user.Role != domain.RoleGrantee {
		return apperrors.NewValidationError("user is not a grantee", map[string]any{
			"grantee_id": granteeID,
			"role":       user.Role,
		})
	}
	return nil
}
