package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/domain"
)

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	}
	status, code := statusFor(domain.KindOf(err))
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func statusFor(kind domain.ErrorKind) (int, string) {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest, "VALIDATION"
	case domain.KindNotFound:
		return fiber.StatusNotFound, "NOT_FOUND"
	case domain.KindStateConflict:
		return fiber.StatusConflict, "STATE_CONFLICT"
	case domain.KindInvariantViolation:
		return fiber.StatusConflict, "INVARIANT_VIOLATION"
	case domain.KindForbidden:
		return fiber.StatusForbidden, "FORBIDDEN"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
