package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/demand-service/internal/api/dto"
	"github.com/spec-kit/demand-service/internal/auth"
	apperrors "github.com/spec-kit/demand-service/pkg/util/errorutil"
)

func principalFrom(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// bind parses the JSON body into dst and runs its validation rules.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(dst)
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
