package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings se evalúa en orden: los errores específicos van antes que los genéricos que envuelven.
var errorMappings = []errorMapping{
	{domain.ErrAmountMismatch, fiber.StatusBadRequest, "AMOUNT_MISMATCH"},
	{domain.ErrInvalidVoidReason, fiber.StatusBadRequest, "INVALID_VOID_REASON"},
	{domain.ErrInvalidRange, fiber.StatusBadRequest, "INVALID_RANGE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNoActiveRange, fiber.StatusConflict, "NO_ACTIVE_RANGE"},
	{domain.ErrRangeDepleted, fiber.StatusConflict, "RANGE_DEPLETED"},
	{domain.ErrRangeOverlap, fiber.StatusConflict, "RANGE_OVERLAP"},
	{domain.ErrInvoiceAlreadyVoided, fiber.StatusConflict, "INVOICE_ALREADY_VOIDED"},
	{domain.ErrVoidNotAllowed, fiber.StatusUnprocessableEntity, "VOID_NOT_ALLOWED"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrTransientConflict, fiber.StatusServiceUnavailable, "TRANSIENT_CONFLICT"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// respondError traduce un error de caso de uso a status + dto.ErrorResponse.
// Los errores no clasificados se registran y se responden como 500 sin detalle interno.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
