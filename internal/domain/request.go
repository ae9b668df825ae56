package domain

import "time"

// RequestStatus enumerates lifecycle states for requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusDelivered  RequestStatus = "DELIVERED"
)

var statuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusRejected,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusDelivered,
}

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts user input into a RequestStatus.
// "In Progress", "in-progress" and "IN_PROGRESS" are equivalent.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	s := RequestStatus(normalizeEnum(raw))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// RequestStatuses returns every known status.
func RequestStatuses() []RequestStatus {
	return append([]RequestStatus(nil), statuses...)
}

// Request is a unit of work filed by a requester against a project.
type Request struct {
	ID          string        `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	RequesterID string        `db:"requester_id"`
	ProjectID   string        `db:"project_id"`
	Status      RequestStatus `db:"status"`
	GranteeID   *string       `db:"grantee_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}
