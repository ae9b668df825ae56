package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Run("Should keep domain errors wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("creating request: %w", NewNotFound("project", map[string]any{"project_id": "p1"}))
		de := ToDomainError(err)
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
		assert.Equal(t, "project not found", de.Message)
		assert.Equal(t, "p1", de.Details["project_id"])
	})
	t.Run("Should map unknown errors to internal", func(t *testing.T) {
		cause := errors.New("boom")
		de := ToDomainError(cause)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.ErrorIs(t, de, cause)
	})
	t.Run("Should return nil for nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("bad", nil)))
	assert.True(t, IsNotFound(NewNotFound("user", nil)))
	assert.True(t, IsForbidden(NewForbidden("nope")))
	assert.True(t, IsConflict(NewConflict("dup", nil)))
	assert.True(t, IsUnauthorized(NewUnauthorized("who")))
	assert.False(t, IsConflict(NewForbidden("nope")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
