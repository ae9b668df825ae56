package events

import (
	"time"

	"github.com/spec-kit/demand-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
	EventProjectCreated       EventType = "project_created"
	EventMembershipChanged    EventType = "project_membership_changed"
	EventUserRegistered       EventType = "user_registered"
	EventUserRemoved          EventType = "user_removed"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// ActorFromSession builds an Actor from the caller session.
func ActorFromSession(s domain.Session) Actor {
	return Actor{UserID: s.UserID, Role: s.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	ProjectID   string `json:"project_id"`
	RequesterID string `json:"requester_id"`
	Title       string `json:"title"`
}

// RequestStatusChangedPayload payload. Grantee fields capture the overwrite that accompanies every status change.
type RequestStatusChangedPayload struct {
	OldStatus  domain.RequestStatus `json:"old_status"`
	NewStatus  domain.RequestStatus `json:"new_status"`
	OldGrantee *string              `json:"old_grantee_id,omitempty"`
	NewGrantee *string              `json:"new_grantee_id,omitempty"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	OldGrantee *string `json:"old_grantee_id,omitempty"`
	NewGrantee string  `json:"new_grantee_id"`
}

// ProjectCreatedPayload payload.
type ProjectCreatedPayload struct {
	Name string `json:"name"`
	Area string `json:"area"`
}

// MembershipChangedPayload payload.
type MembershipChangedPayload struct {
	UserID string `json:"user_id"`
	Added  bool   `json:"added"`
}

// UserPayload payload.
type UserPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
