package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// VoidInvoiceUseCase anula facturas dentro del periodo fiscal de emisión.
// El correlativo pasa a voided y nunca vuelve al pool; los contadores del CAI no cambian.
type VoidInvoiceUseCase struct {
	txRunner FiscalTxRunner
	settings Settings
	log      zerolog.Logger
}

// NewVoidInvoiceUseCase construye el caso de uso.
func NewVoidInvoiceUseCase(txRunner FiscalTxRunner, settings Settings, log zerolog.Logger) *VoidInvoiceUseCase {
	return &VoidInvoiceUseCase{
		txRunner: txRunner,
		settings: settings.withDefaults(),
		log:      log,
	}
}

// VoidInvoice anula la factura invoiceID.
//
// Errores: domain.ErrInvalidVoidReason si el motivo no es uno de los admitidos;
// domain.ErrInvoiceAlreadyVoided si ya estaba anulada; domain.ErrVoidNotAllowed si el mes
// fiscal de emisión ya cerró. Ninguno se reintenta.
func (uc *VoidInvoiceUseCase) VoidInvoice(ctx context.Context, tenantID, userID, invoiceID string, in dto.VoidInvoiceRequest) (*dto.VoidInvoiceResponse, error) {
	if !entity.ValidVoidReason(in.Reason) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVoidReason, in.Reason)
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !validID(invoiceID) {
		return nil, domain.ErrNotFound
	}

	var voided *entity.Invoice
	err := withRetry(ctx, uc.settings, uc.log, "void_invoice", func() error {
		return uc.txRunner.RunFiscal(ctx, func(
			_ repository.AuthorizationRangeRepository,
			correlativeRepo repository.CorrelativeRepository,
			invoiceRepo repository.InvoiceRepository,
		) error {
			inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
			if err != nil {
				return err
			}
			if inv == nil || inv.TenantID != tenantID {
				return domain.ErrNotFound
			}
			if inv.Status == entity.InvoiceStatusVoided {
				return fmt.Errorf("factura %s: %w", inv.InvoiceNumber, domain.ErrInvoiceAlreadyVoided)
			}
			now := uc.settings.now()
			if !fiscal.SameFiscalPeriod(inv.IssuedAt, now, uc.settings.Location) {
				return fmt.Errorf("factura %s emitida el %s: %w",
					inv.InvoiceNumber, inv.IssuedAt.In(uc.settings.Location).Format(dateLayout), domain.ErrVoidNotAllowed)
			}

			inv.Status = entity.InvoiceStatusVoided
			inv.VoidReason = in.Reason
			inv.VoidNotes = in.Notes
			inv.VoidedAt = &now
			inv.VoidedBy = userID
			inv.UpdatedAt = now
			if err := invoiceRepo.MarkVoided(ctx, inv); err != nil {
				return err
			}
			if err := correlativeRepo.MarkVoided(ctx, inv.CorrelativeID, now); err != nil {
				return err
			}
			voided = inv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("invoice_number", voided.InvoiceNumber).
		Str("reason", voided.VoidReason).
		Str("user_id", userID).
		Msg("factura anulada")

	return &dto.VoidInvoiceResponse{
		Success:       true,
		InvoiceID:     voided.ID,
		InvoiceNumber: voided.InvoiceNumber,
		VoidedAt:      *voided.VoidedAt,
	}, nil
}
