package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/demand-service/internal/auth"
	"github.com/spec-kit/demand-service/internal/config"
	"github.com/spec-kit/demand-service/internal/domain"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Should register and issue a token", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.auth.Register(ctx, RegisterInput{
			Name: "Bia", Email: " Bia@Example.com ", Secret: "s3cret", Role: "grantee",
		})
		require.NoError(t, err)
		assert.Equal(t, "bia@example.com", result.User.Email)
		assert.Equal(t, domain.RoleGrantee, result.User.Role)
		assert.NotEqual(t, "s3cret", result.User.PasswordHash)

		claims, err := f.auth.TokenManager().ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, claims.UserID)
		assert.Equal(t, domain.RoleGrantee, claims.Role)
	})
	t.Run("Should reject duplicate email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.com", Secret: "x", Role: "REQUESTER"})
		require.NoError(t, err)
		_, err = f.auth.Register(ctx, RegisterInput{Name: "B", Email: "DUP@example.com", Secret: "y", Role: "GRANTEE"})
		assert.True(t, apperrors.IsConflict(err))
	})
	t.Run("Should reject unknown role", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Secret: "x", Role: "visitor"})
		assert.True(t, apperrors.IsValidation(err))
	})
	t.Run("Should require every field", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com"})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestAuthService_Credentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registered, err := f.auth.Register(ctx, RegisterInput{Name: "Rui", Email: "rui@example.com", Secret: "right", Role: "requester"})
	require.NoError(t, err)

	t.Run("Should find user with matching secret", func(t *testing.T) {
		user, err := f.auth.FindUserByCredentials(ctx, "RUI@example.com", "right")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, registered.User.ID, user.ID)
	})
	t.Run("Should return none for wrong secret", func(t *testing.T) {
		user, err := f.auth.FindUserByCredentials(ctx, "rui@example.com", "wrong")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
	t.Run("Should return none for unknown email", func(t *testing.T) {
		user, err := f.auth.FindUserByCredentials(ctx, "nobody@example.com", "right")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
	t.Run("Should fail login with unauthorized", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "rui@example.com", "wrong")
		assert.True(t, apperrors.IsUnauthorized(err))
	})
	t.Run("Should login", func(t *testing.T) {
		result, err := f.auth.Login(ctx, "rui@example.com", "right")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.True(t, result.ExpiresAt.After(time.Now()))
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	revoked := auth.NewRedisRevocationStore(client)

	f := newFixture(t)
	svc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		AuthDependencies{UserRepo: f.store.Users(), Revocation: revoked})
	result, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Secret: "x", Role: "administrator"})
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, isRevoked)

	t.Run("Should no-op without revocation store", func(t *testing.T) {
		assert.NoError(t, f.auth.Logout(ctx, claims))
	})
}
