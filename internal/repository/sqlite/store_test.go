package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/config"
	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/persistence"
	"github.com/spec-kit/demand-service/internal/repository"
	"github.com/spec-kit/demand-service/internal/repository/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	handle, err := persistence.NewSQLite(ctx, config.SQLiteConfig{
		Path:             filepath.Join(t.TempDir(), "demands.db"),
		BusyTimeoutMilli: 1000,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(handle.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, handle.DB, logger))
	return sqlite.NewStore(handle.DB)
}

func mustUser(t *testing.T, s *sqlite.Store, id, email string, role domain.Role) {
	t.Helper()
	require.NoError(t, s.Users().Create(context.Background(), &domain.User{
		ID: id, Name: id, Email: email, PasswordHash: "hash", Role: role, CreatedAt: time.Now().UTC(),
	}))
}

func TestSQLiteStore_Users(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	mustUser(t, s, "a", "x@y.com", domain.RoleRequester)

	t.Run("Should reject duplicate email", func(t *testing.T) {
		err := s.Users().Create(ctx, &domain.User{ID: "b", Name: "B", Email: "x@y.com", PasswordHash: "h", Role: domain.RoleGrantee, CreatedAt: time.Now().UTC()})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
	t.Run("Should find by email", func(t *testing.T) {
		u, err := s.Users().GetByEmail(ctx, "x@y.com")
		require.NoError(t, err)
		assert.Equal(t, "a", u.ID)
		assert.Equal(t, domain.RoleRequester, u.Role)
	})
	t.Run("Should report missing user", func(t *testing.T) {
		_, err := s.Users().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, s.Users().Delete(ctx, "missing"), repository.ErrNotFound)
	})
}

func TestSQLiteStore_RequestLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	mustUser(t, s, "req", "req@example.com", domain.RoleRequester)
	mustUser(t, s, "gra", "gra@example.com", domain.RoleGrantee)
	mustUser(t, s, "adm", "adm@example.com", domain.RoleAdministrator)
	require.NoError(t, s.Projects().Create(ctx, &domain.Project{ID: "p1", Name: "Portal", Area: "Web", CreatedAt: time.Now().UTC()}))

	now := time.Now().UTC()
	require.NoError(t, s.Requests().Create(ctx, &domain.Request{
		ID: "r1", Title: "Fix", Description: "Broken login", RequesterID: "req", ProjectID: "p1",
		Status: domain.RequestStatusPending, CreatedAt: now, UpdatedAt: now,
	}))

	grantee := "gra"
	require.NoError(t, s.Requests().UpdateGrantee(ctx, "r1", &grantee))
	assigned, err := s.Requests().ListByGrantee(ctx, "gra")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, domain.RequestStatusPending, assigned[0].Status)

	require.NoError(t, s.Requests().UpdateStatus(ctx, "r1", domain.RequestStatusCompleted, nil))
	r1, err := s.Requests().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, r1.Status)
	assert.Nil(t, r1.GranteeID)

	mine, err := s.Requests().ListByRequester(ctx, "req")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assert.ErrorIs(t, s.Users().Delete(ctx, "req"), repository.ErrConflict)
	assert.ErrorIs(t, s.Requests().UpdateStatus(ctx, "nope", domain.RequestStatusRejected, nil), repository.ErrNotFound)
}

func TestSQLiteStore_Memberships(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	mustUser(t, s, "adm", "adm@example.com", domain.RoleAdministrator)
	require.NoError(t, s.Projects().Create(ctx, &domain.Project{ID: "p1", Name: "Portal", Area: "Web", CreatedAt: time.Now().UTC()}))
	require.NoError(t, s.Projects().Create(ctx, &domain.Project{ID: "p2", Name: "Sensors", Area: "IoT", CreatedAt: time.Now().UTC()}))

	m := &domain.Membership{ProjectID: "p2", UserID: "adm", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Projects().AddMember(ctx, m))
	assert.ErrorIs(t, s.Projects().AddMember(ctx, m), repository.ErrConflict)

	adm := "adm"
	scoped, err := s.Projects().List(ctx, &adm)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "p2", scoped[0].ID)

	all, err := s.Projects().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	members, err := s.Projects().ListMembers(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "adm", members[0].ID)

	require.NoError(t, s.Users().Delete(ctx, "adm"))
	members, err = s.Projects().ListMembers(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, members)
}
