package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/repository"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

// mapRepoError translates storage sentinels into the domain error taxonomy.
func mapRepoError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict(resource+" conflicts with existing data", details)
	}
	return apperrors.MapError(err)
}

func requireAdministrator(session domain.Session, action string) error {
	if !session.IsAdministrator() {
		return apperrors.NewForbidden("only administrators can " + action)
	}
	return nil
}

// requireFields returns a validation error naming every blank field.
func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
}

// publish emits an event; delivery failures are logged and never fail the operation.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
