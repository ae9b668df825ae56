package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/demand-service/internal/api/dto"
	"github.com/spec-kit/demand-service/internal/service"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// Create POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project, err := h.service.CreateProject(c.UserContext(), principal.Session(), req.Name, req.Area)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, dto.NewProjectResponse(project))
}

// List GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	projects, err := h.service.ListProjects(c.UserContext(), principal.Session())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewProjectResponses(projects))
}

// ListMembers GET /projects/:id/members.
func (h *ProjectsHandler) ListMembers(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	members, err := h.service.ListMembers(c.UserContext(), principal.Session(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewUserResponses(members))
}

// AddMember PUT /projects/:id/members/:userId.
func (h *ProjectsHandler) AddMember(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.AddMember(c.UserContext(), principal.Session(), c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveMember DELETE /projects/:id/members/:userId.
func (h *ProjectsHandler) RemoveMember(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveMember(c.UserContext(), principal.Session(), c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
