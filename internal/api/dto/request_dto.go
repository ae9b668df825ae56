package dto

import (
	"time"

	"github.com/spec-kit/demand-service/internal/domain"
)

// CreateRequestRequest payload. Presence checks happen in the service after authorization.
type CreateRequestRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=4000"`
	ProjectID   string `json:"project_id" validate:"max=64"`
}

// UpdateStatusRequest payload. A missing or null grantee_id clears the grantee.
type UpdateStatusRequest struct {
	Status    string  `json:"status" validate:"max=32"`
	GranteeID *string `json:"grantee_id" validate:"omitempty,max=64"`
}

// AssignGranteeRequest payload.
type AssignGranteeRequest struct {
	GranteeID string `json:"grantee_id" validate:"max=64"`
}

// RequestResponse response.
type RequestResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	RequesterID string               `json:"requester_id"`
	ProjectID   string               `json:"project_id"`
	Status      domain.RequestStatus `json:"status"`
	GranteeID   *string              `json:"grantee_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func NewRequestResponse(request *domain.Request) RequestResponse {
	return RequestResponse{
		ID:          request.ID,
		Title:       request.Title,
		Description: request.Description,
		RequesterID: request.RequesterID,
		ProjectID:   request.ProjectID,
		Status:      request.Status,
		GranteeID:   request.GranteeID,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}

func NewRequestResponses(requests []domain.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, NewRequestResponse(&requests[i]))
	}
	return out
}
