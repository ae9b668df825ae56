package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/demand-service/internal/api/dto"
	"github.com/spec-kit/demand-service/internal/service"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:   req.Name,
		Email:  req.Email,
		Secret: req.Password,
		Role:   req.Role,
	})
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, authResponse(result))
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, authResponse(result))
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), principal.Claims); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewUserResponse(principal.User))
}

// List handles GET /users?role=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.UserContext(), principal.Session(), c.Query("role"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, dto.NewUserResponses(users))
}

// Remove handles DELETE /users/:id.
func (h *UsersHandler) Remove(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.users.RemoveUser(c.UserContext(), principal.Session(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      dto.NewUserResponse(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}
