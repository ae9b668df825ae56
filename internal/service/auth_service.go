package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/auth"
	"github.com/spec-kit/demand-service/internal/config"
	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/observability"
	"github.com/spec-kit/demand-service/internal/repository"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoked    auth.RevocationStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Revocation auth.RevocationStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name   string
	Email  string
	Secret string
	Role   string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		revoked:    deps.Revocation,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
		bcryptCost: cfg.BcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account and issues an access token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if err := requireFields(map[string]string{
		"name":   name,
		"email":  email,
		"secret": input.Secret,
		"role":   input.Role,
	}); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{
			"role":    input.Role,
			"allowed": domain.Roles(),
		})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Secret, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Actor:     events.Actor{UserID: user.ID, Role: user.Role},
		Payload:   events.UserPayload{Email: user.Email, Role: user.Role},
	})
	return s.issue(user)
}

// FindUserByCredentials returns the matching user, or nil when the email is unknown or the
// secret does not match.
func (s *AuthService) FindUserByCredentials(ctx context.Context, email, secret string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.PasswordMatches(user.PasswordHash, secret) {
		return nil, nil
	}
	return user, nil
}

// Login authenticates a user and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, secret string) (*AuthResult, error) {
	user, err := s.FindUserByCredentials(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.AuthFailed("invalid_credentials")
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}
