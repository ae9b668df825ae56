package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/demand-service/internal/api/dto"
	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/service"
)

// RequestsHandler manages demand request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateRequestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	request, err := h.service.CreateRequest(c.UserContext(), principal.Session(), service.CreateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, dto.NewRequestResponse(request))
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListRequests(c.UserContext(), principal.Session())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewRequestResponses(requests))
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	request, err := h.service.GetRequest(c.UserContext(), principal.Session(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewRequestResponse(request))
}

// UpdateStatus PATCH /requests/:id/status.
func (h *RequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	// Unparseable input is passed through so the service reports it after its role check.
	status, ok := domain.ParseRequestStatus(req.Status)
	if !ok {
		status = domain.RequestStatus(req.Status)
	}
	request, err := h.service.UpdateStatus(c.UserContext(), principal.Session(), c.Params("id"), status, req.GranteeID)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewRequestResponse(request))
}

// AssignGrantee PUT /requests/:id/grantee.
func (h *RequestsHandler) AssignGrantee(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignGranteeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	request, err := h.service.AssignGrantee(c.UserContext(), principal.Session(), req.GranteeID, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewRequestResponse(request))
}
