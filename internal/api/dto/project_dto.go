package dto

import (
	"time"

	"github.com/spec-kit/demand-service/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"max=200"`
	Area string `json:"area" validate:"max=200"`
}

// ProjectResponse response.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Area      string    `json:"area"`
	CreatedAt time.Time `json:"created_at"`
}

func NewProjectResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		Area:      project.Area,
		CreatedAt: project.CreatedAt,
	}
}

func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, NewProjectResponse(&projects[i]))
	}
	return out
}
