package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
)

// InvoiceHandler emisión, consulta y anulación de facturas fiscales.
type InvoiceHandler struct {
	issuer *billing.IssueInvoiceUseCase
	voider *billing.VoidInvoiceUseCase
	pdf    *billing.PDFUseCase
	log    zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(issuer *billing.IssueInvoiceUseCase, voider *billing.VoidInvoiceUseCase, pdf *billing.PDFUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{issuer: issuer, voider: voider, pdf: pdf, log: log}
}

// Issue godoc
// @Summary      Emitir factura
// @Description  Asigna el próximo correlativo del CAI vigente. Reintentar la misma venta devuelve la misma factura (200).
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueInvoiceRequest  true  "Venta a facturar"
// @Success      201   {object}  dto.IssueInvoiceResponse
// @Success      200   {object}  dto.IssueInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.BranchID == "" {
		in.BranchID = GetBranchID(c)
	}
	out, err := h.issuer.IssueInvoice(c.Context(), tenantID, userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusCreated
	if out.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.issuer.GetInvoice(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal"
// @Param        status     query  string  false  "active | voided"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.InvoiceResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	out, err := h.issuer.ListInvoices(c.Context(), tenantID, c.Query("branch_id"), c.Query("status"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular factura
// @Description  Solo dentro del mes fiscal de emisión. El número anulado nunca se reutiliza.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la factura"
// @Param        body  body  dto.VoidInvoiceRequest  true  "Motivo"
// @Success      200   {object}  dto.VoidInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.VoidInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.voider.VoidInvoice(c.Context(), tenantID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar factura en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
