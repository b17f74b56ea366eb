package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
)

// RangeHandler administra los rangos de autorización (CAI).
type RangeHandler struct {
	uc  *billing.RangeUseCase
	log zerolog.Logger
}

// NewRangeHandler construye el handler.
func NewRangeHandler(uc *billing.RangeUseCase, log zerolog.Logger) *RangeHandler {
	return &RangeHandler{uc: uc, log: log}
}

// Authorize godoc
// @Summary      Registrar CAI
// @Description  Registra un rango autorizado por el SAR y crea todos sus correlativos.
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AuthorizeRangeRequest  true  "Datos del CAI"
// @Success      201   {object}  dto.RangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges [post]
func (h *RangeHandler) Authorize(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.AuthorizeRangeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AuthorizeRange(c.Context(), tenantID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar CAI
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (vacío = todas)"
// @Success      200  {array}  dto.RangeResponse
// @Router       /api/fiscal/ranges [get]
func (h *RangeHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.ListRanges(c.Context(), tenantID, c.Query("branch_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener CAI
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del CAI"
// @Success      200  {object}  dto.RangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges/{id} [get]
func (h *RangeHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetRange(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Available godoc
// @Summary      Correlativos disponibles del CAI
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del CAI"
// @Success      200  {object}  dto.AvailableCountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges/{id}/available [get]
func (h *RangeHandler) Available(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetAvailableCount(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Correlatives godoc
// @Summary      Auditoría de correlativos del CAI
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del CAI"
// @Param        status  query  string  false  "available | used | voided"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CorrelativeListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges/{id}/correlatives [get]
func (h *RangeHandler) Correlatives(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	out, err := h.uc.ListCorrelatives(c.Context(), tenantID, c.Params("id"), c.Query("status"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar CAI
// @Description  Los números ya emitidos no cambian; los disponibles dejan de asignarse.
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del CAI"
// @Param        body  body  dto.CancelRangeRequest  true  "Motivo"
// @Success      200   {object}  dto.RangeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges/{id}/cancel [post]
func (h *RangeHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CancelRangeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CancelRange(c.Context(), tenantID, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar CAI sin uso
// @Tags         fiscal
// @Security     Bearer
// @Param        id   path  string  true  "ID del CAI"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fiscal/ranges/{id} [delete]
func (h *RangeHandler) Delete(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	if err := h.uc.DeleteRange(c.Context(), tenantID, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
