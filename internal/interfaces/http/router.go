package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RangeUC       *billing.RangeUseCase
	CorrelativeUC *billing.CorrelativeUseCase
	IssueInvoice  *billing.IssueInvoiceUseCase
	VoidInvoice   *billing.VoidInvoiceUseCase
	InvoicePDF    *billing.PDFUseCase
	JWTSecret     string
	JWTIssuer     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el tenant sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Log), AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	adminOnly := RequireRole(entity.RoleAdmin)
	supervisors := RequireRole(entity.RoleAdmin, entity.RoleSupervisor)

	// CAI (rangos de autorización)
	ranges := api.Group("/fiscal/ranges")
	rangeHandler := NewRangeHandler(deps.RangeUC, deps.Log)
	ranges.Post("/", adminOnly, rangeHandler.Authorize)
	ranges.Get("/", rangeHandler.List)
	ranges.Get("/:id", rangeHandler.GetByID)
	ranges.Get("/:id/available", rangeHandler.Available)
	ranges.Get("/:id/correlatives", rangeHandler.Correlatives)
	ranges.Post("/:id/cancel", adminOnly, rangeHandler.Cancel)
	ranges.Delete("/:id", adminOnly, rangeHandler.Delete)

	// Correlativos
	correlativeHandler := NewCorrelativeHandler(deps.CorrelativeUC, deps.Log)
	api.Get("/fiscal/correlatives/next", correlativeHandler.Next)

	// Facturas
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.IssueInvoice, deps.VoidInvoice, deps.InvoicePDF, deps.Log)
	invoices.Post("/", invoiceHandler.Issue)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/:id/void", supervisors, invoiceHandler.Void)
}
