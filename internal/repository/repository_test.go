package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/demand-service/internal/domain"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool
}

func TestUserRepository_Create(t *testing.T) {
	user := &domain.User{
		ID:           "u1",
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleRequester,
		CreatedAt:    time.Now(),
	}

	t.Run("Should insert user", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(context.Background(), user))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should map unique violation to conflict", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"})

		err := repo.Create(context.Background(), user)
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	columns := []string{"id", "name", "email", "password_hash", "role", "created_at"}

	t.Run("Should return user", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		now := time.Now()
		rows := mockPool.NewRows(columns).
			AddRow("u1", "Ana", "ana@example.com", "hash", domain.RoleGrantee, now)
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
			WithArgs("ana@example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(context.Background(), "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, domain.RoleGrantee, user.Role)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrNotFound", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("Should report missing user", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		mockPool.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs("u9").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "u9"), ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should map foreign key violation to conflict", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewUserRepository(mockPool)
		mockPool.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs("u1").
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

		assert.ErrorIs(t, repo.Delete(context.Background(), "u1"), ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestProjectRepository_List(t *testing.T) {
	columns := []string{"id", "name", "area", "created_at"}
	now := time.Now()

	t.Run("Should list every project when unscoped", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewProjectRepository(mockPool)
		rows := mockPool.NewRows(columns).
			AddRow("p1", "Portal", "Web", now).
			AddRow("p2", "Sensors", "IoT", now)
		mockPool.ExpectQuery("SELECT (.+) FROM projects ORDER BY created_at, id").
			WillReturnRows(rows)

		projects, err := repo.List(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should filter by membership", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewProjectRepository(mockPool)
		member := "admin-1"
		rows := mockPool.NewRows(columns).AddRow("p2", "Sensors", "IoT", now)
		mockPool.ExpectQuery("SELECT (.+) FROM projects WHERE id IN \\(SELECT project_id FROM project_members WHERE user_id = \\$1\\)").
			WithArgs(member).
			WillReturnRows(rows)

		projects, err := repo.List(context.Background(), &member)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "p2", projects[0].ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestProjectRepository_AddMember(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewProjectRepository(mockPool)
	m := &domain.Membership{ProjectID: "p1", UserID: "u1", CreatedAt: time.Now()}
	mockPool.ExpectExec("INSERT INTO project_members").
		WithArgs(m.ProjectID, m.UserID, m.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	assert.ErrorIs(t, repo.AddMember(context.Background(), m), ErrConflict)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRequestRepository_ListByRequester(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewRequestRepository(mockPool)
	now := time.Now()
	grantee := "g1"
	var noGrantee *string
	rows := mockPool.NewRows(requestColumns).
		AddRow("r1", "Fix login", "desc", "req-1", "p1", domain.RequestStatusPending, noGrantee, now, now).
		AddRow("r2", "Report", "desc", "req-1", "p1", domain.RequestStatusInProgress, &grantee, now, now)
	mockPool.ExpectQuery("SELECT (.+) FROM requests WHERE requester_id = \\$1 ORDER BY created_at, id").
		WithArgs("req-1").
		WillReturnRows(rows)

	requests, err := repo.ListByRequester(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Nil(t, requests[0].GranteeID)
	require.NotNil(t, requests[1].GranteeID)
	assert.Equal(t, "g1", *requests[1].GranteeID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRequestRepository_UpdateStatus(t *testing.T) {
	t.Run("Should overwrite grantee with null", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewRequestRepository(mockPool)
		var noGrantee *string
		mockPool.ExpectExec("UPDATE requests SET grantee_id = \\$1, status = \\$2, updated_at = \\$3 WHERE id = \\$4").
			WithArgs(noGrantee, domain.RequestStatusCompleted, pgxmock.AnyArg(), "r1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateStatus(context.Background(), "r1", domain.RequestStatusCompleted, nil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should report missing request", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := NewRequestRepository(mockPool)
		grantee := "g1"
		mockPool.ExpectExec("UPDATE requests SET grantee_id = \\$1, updated_at = \\$2 WHERE id = \\$3").
			WithArgs(&grantee, pgxmock.AnyArg(), "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateGrantee(context.Background(), "missing", &grantee), ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
