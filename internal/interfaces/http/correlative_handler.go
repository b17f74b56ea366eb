package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
)

// CorrelativeHandler consulta el próximo correlativo.
type CorrelativeHandler struct {
	uc  *billing.CorrelativeUseCase
	log zerolog.Logger
}

// NewCorrelativeHandler construye el handler.
func NewCorrelativeHandler(uc *billing.CorrelativeUseCase, log zerolog.Logger) *CorrelativeHandler {
	return &CorrelativeHandler{uc: uc, log: log}
}

// Next godoc
// @Summary      Próximo correlativo (vista previa)
// @Description  No reserva el número: la reserva ocurre al emitir la factura.
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        branch_id      query  string  false  "Sucursal (default: la del token)"
// @Param        document_type  query  string  false  "Tipo de documento"  default(FACTURA)
// @Success      200  {object}  dto.NextCorrelativeResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fiscal/correlatives/next [get]
func (h *CorrelativeHandler) Next(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	branchID := c.Query("branch_id", GetBranchID(c))
	out, err := h.uc.NextCorrelative(c.Context(), tenantID, branchID, c.Query("document_type"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
