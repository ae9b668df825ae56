package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	project, err := f.projects.CreateProject(ctx, f.admin, "Sensors", "IoT")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, []events.EventType{events.EventProjectCreated}, f.eventTypes())

	t.Run("Should be visible to non-administrators", func(t *testing.T) {
		projects, err := f.projects.ListProjects(ctx, f.requester)
		require.NoError(t, err)
		assert.Contains(t, projectIDs(projects), project.ID)
	})
	t.Run("Should deny non-administrators", func(t *testing.T) {
		_, err := f.projects.CreateProject(ctx, f.requester, "x", "y")
		assert.True(t, apperrors.IsForbidden(err))
	})
	t.Run("Should require name and area", func(t *testing.T) {
		_, err := f.projects.CreateProject(ctx, f.admin, "", " ")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestProjectService_Membership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	scoped, err := f.projects.ListProjects(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, scoped)

	require.NoError(t, f.projects.AddMember(ctx, f.admin, f.project.ID, f.admin.UserID))
	scoped, err = f.projects.ListProjects(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []string{f.project.ID}, projectIDs(scoped))

	t.Run("Should reject duplicate membership", func(t *testing.T) {
		err := f.projects.AddMember(ctx, f.admin, f.project.ID, f.admin.UserID)
		assert.True(t, apperrors.IsConflict(err))
		members, err := f.projects.ListMembers(ctx, f.admin, f.project.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})
	t.Run("Should validate references", func(t *testing.T) {
		assert.True(t, apperrors.IsNotFound(f.projects.AddMember(ctx, f.admin, "ghost", f.admin.UserID)))
		assert.True(t, apperrors.IsNotFound(f.projects.AddMember(ctx, f.admin, f.project.ID, "ghost")))
		assert.True(t, apperrors.IsNotFound(f.projects.RemoveMember(ctx, f.admin, "ghost", f.admin.UserID)))
		_, err := f.projects.ListMembers(ctx, f.admin, "ghost")
		assert.True(t, apperrors.IsNotFound(err))
	})
	t.Run("Should deny non-administrators", func(t *testing.T) {
		assert.True(t, apperrors.IsForbidden(f.projects.AddMember(ctx, f.grantee, f.project.ID, f.grantee.UserID)))
		assert.True(t, apperrors.IsForbidden(f.projects.RemoveMember(ctx, f.grantee, f.project.ID, f.admin.UserID)))
	})
	t.Run("Should treat removing an absent member as no-op", func(t *testing.T) {
		require.NoError(t, f.projects.RemoveMember(ctx, f.admin, f.project.ID, f.admin.UserID))
		require.NoError(t, f.projects.RemoveMember(ctx, f.admin, f.project.ID, f.admin.UserID))
		scoped, err := f.projects.ListProjects(ctx, f.admin)
		require.NoError(t, err)
		assert.Empty(t, scoped)
	})
}

func projectIDs(projects []domain.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}
