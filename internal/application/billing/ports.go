package billing

import (
	"context"

	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// FiscalTxRunner ejecuta una función dentro de una transacción con los repos del motor fiscal.
// Asignar el correlativo, incrementar el contador del CAI y persistir la factura ocurren
// en el mismo fn: si algo falla después de reclamar el número, todo se revierte.
type FiscalTxRunner interface {
	RunFiscal(ctx context.Context, fn func(
		rangeRepo repository.AuthorizationRangeRepository,
		correlativeRepo repository.CorrelativeRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// Issuer datos del emisor impresos en la factura.
type Issuer struct {
	Name    string
	RTN     string
	Address string
}

// InvoiceDocument todo lo que necesita la representación impresa de una factura.
type InvoiceDocument struct {
	Issuer  Issuer
	Invoice *entity.Invoice
	Range   *entity.AuthorizationRange
	Details []*entity.InvoiceDetail
}

// InvoicePDFGenerator genera el PDF de una factura ya emitida.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
