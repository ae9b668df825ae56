package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/demand-service/internal/events"
)

// AuditService writes an audit trail of domain events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger).Named("audit"),
	}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.SubscribeAll(a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
