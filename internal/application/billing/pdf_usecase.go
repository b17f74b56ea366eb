package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// PDFUseCase genera la representación impresa de una factura fiscal.
// Corre fuera de toda transacción: renderizar nunca retiene el bloqueo del CAI.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	rangeRepo   repository.AuthorizationRangeRepository
	generator   InvoicePDFGenerator
	issuer      Issuer
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	rangeRepo repository.AuthorizationRangeRepository,
	generator InvoicePDFGenerator,
	issuer Issuer,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		rangeRepo:   rangeRepo,
		generator:   generator,
		issuer:      issuer,
	}
}

// DownloadInvoicePDF carga factura, detalle y CAI y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o es de otro tenant.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, tenantID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	if !validID(invoiceID) {
		return nil, "", domain.ErrNotFound
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil || inv.TenantID != tenantID {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. CAI (código, rango autorizado y fecha límite van impresos) ────────
	rng, err := uc.rangeRepo.GetByID(ctx, inv.RangeID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener CAI: %w", err)
	}
	if rng == nil {
		return nil, "", fmt.Errorf("pdf: CAI %s de la factura %s no existe", inv.RangeID, inv.InvoiceNumber)
	}

	// ── 3. Detalle ────────────────────────────────────────────────────────────
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener detalles: %w", err)
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, InvoiceDocument{
		Issuer:  uc.issuer,
		Invoice: inv,
		Range:   rng,
		Details: details,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s%s.pdf", rng.Prefix, inv.InvoiceNumber)
	return pdfBytes, filename, nil
}
