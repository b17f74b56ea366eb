package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// IssueInvoiceUseCase fiscaliza una venta: reserva el correlativo y persiste la factura en una sola transacción.
type IssueInvoiceUseCase struct {
	txRunner    FiscalTxRunner
	invoiceRepo repository.InvoiceRepository
	allocator   *Allocator
	settings    Settings
	log         zerolog.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	txRunner FiscalTxRunner,
	invoiceRepo repository.InvoiceRepository,
	settings Settings,
	log zerolog.Logger,
) *IssueInvoiceUseCase {
	settings = settings.withDefaults()
	return &IssueInvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		allocator:   NewAllocator(fiscal.NewAlertEvaluator(settings.Alerts)),
		settings:    settings,
		log:         log,
	}
}

// IssueInvoice emite la factura de una venta.
//
// Los montos se concilian antes de abrir la transacción: un desglose inválido nunca consume número.
// Si la venta ya tiene factura se devuelve la existente con Replayed = true (reintento del cliente).
func (uc *IssueInvoiceUseCase) IssueInvoice(ctx context.Context, tenantID, userID string, in dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentTypeInvoice
	}

	declared := fiscal.Amounts{
		SubtotalTaxed:  in.Amounts.SubtotalTaxed,
		SubtotalExempt: in.Amounts.SubtotalExempt,
		Discount:       in.Amounts.Discount,
		Tax:            in.Amounts.Tax,
		Total:          in.Amounts.Total,
	}
	lines := lo.Map(in.Items, func(it dto.InvoiceItemRequest, _ int) fiscal.Line {
		return fiscal.Line{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
		}
	})
	amounts, computed, err := fiscal.Reconcile(declared, lines)
	if err != nil {
		return nil, err
	}
	customerRTN, err := fiscal.NormalizeRTN(in.Customer.TaxID)
	if err != nil {
		return nil, err
	}

	// Camino rápido de idempotencia, sin bloquear nada.
	if prev, err := uc.invoiceRepo.GetBySaleID(ctx, tenantID, in.SaleID); err != nil {
		return nil, err
	} else if prev != nil {
		return uc.replay(ctx, prev)
	}

	key := repository.RangeKey{TenantID: tenantID, BranchID: in.BranchID, DocumentType: docType}
	var (
		inv     *entity.Invoice
		details []*entity.InvoiceDetail
		alloc   *Allocation
		prev    *entity.Invoice
	)
	err = withRetry(ctx, uc.settings, uc.log, "issue_invoice", func() error {
		inv, details, alloc, prev = nil, nil, nil, nil
		return uc.txRunner.RunFiscal(ctx, func(
			rangeRepo repository.AuthorizationRangeRepository,
			correlativeRepo repository.CorrelativeRepository,
			invoiceRepo repository.InvoiceRepository,
		) error {
			existing, err := invoiceRepo.GetBySaleID(ctx, tenantID, in.SaleID)
			if err != nil {
				return err
			}
			if existing != nil {
				prev = existing
				return nil
			}

			now := uc.settings.now()
			alloc, err = uc.allocator.Allocate(ctx, rangeRepo, correlativeRepo, key, now)
			if err != nil {
				return err
			}

			inv = &entity.Invoice{
				ID:            uuid.New().String(),
				TenantID:      tenantID,
				BranchID:      in.BranchID,
				DocumentType:  docType,
				RangeID:       alloc.Range.ID,
				CorrelativeID: alloc.Correlative.ID,
				SaleID:        in.SaleID,
				InvoiceNumber: alloc.Correlative.FormattedNumber,
				Customer: entity.CustomerSnapshot{
					Name:    in.Customer.Name,
					TaxID:   customerRTN,
					Address: in.Customer.Address,
				},
				Subtotal:       amounts.Subtotal(),
				SubtotalTaxed:  amounts.SubtotalTaxed,
				SubtotalExempt: amounts.SubtotalExempt,
				Tax:            amounts.Tax,
				Discount:       amounts.Discount,
				Total:          amounts.Total,
				IssuedAt:       now,
				IssuedBy:       userID,
				Status:         entity.InvoiceStatusActive,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := invoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			for i, cl := range computed {
				d := &entity.InvoiceDetail{
					ID:          uuid.New().String(),
					InvoiceID:   inv.ID,
					LineNumber:  i + 1,
					Description: cl.Description,
					Quantity:    cl.Quantity,
					UnitPrice:   cl.UnitPrice,
					Discount:    cl.Discount,
					TaxRate:     cl.TaxRate,
					Subtotal:    cl.Subtotal,
					Tax:         cl.Tax,
				}
				if err := invoiceRepo.CreateDetail(ctx, d); err != nil {
					return err
				}
				details = append(details, d)
			}
			return nil
		})
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra caja emitió la misma venta entre nuestra lectura y el INSERT; la tx ya se revirtió.
		if existing, gerr := uc.invoiceRepo.GetBySaleID(ctx, tenantID, in.SaleID); gerr == nil && existing != nil {
			return uc.replay(ctx, existing)
		}
	}
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return uc.replay(ctx, prev)
	}

	logEvt := uc.log.Info()
	if alloc.Alerts.Any() || alloc.Range.IsDepleted() {
		logEvt = uc.log.Warn()
	}
	logEvt.
		Str("tenant_id", tenantID).
		Str("branch_id", in.BranchID).
		Str("sale_id", in.SaleID).
		Str("invoice_number", inv.InvoiceNumber).
		Int64("available", alloc.Alerts.AvailableCount).
		Int("days_to_expiration", alloc.Alerts.DaysUntilExpiration).
		Msg("factura emitida")

	alerts := toAlertsResponse(alloc.Alerts)
	return &dto.IssueInvoiceResponse{
		Invoice: toInvoiceResponse(inv, details),
		Alerts:  &alerts,
	}, nil
}

func (uc *IssueInvoiceUseCase) replay(ctx context.Context, inv *entity.Invoice) (*dto.IssueInvoiceResponse, error) {
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("sale_id", inv.SaleID).Str("invoice_number", inv.InvoiceNumber).Msg("venta ya facturada, se devuelve la existente")
	return &dto.IssueInvoiceResponse{
		Invoice:  toInvoiceResponse(inv, details),
		Replayed: true,
	}, nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *IssueInvoiceUseCase) GetInvoice(ctx context.Context, tenantID, id string) (*dto.InvoiceResponse, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toInvoiceResponse(inv, details)
	return &resp, nil
}

// ListInvoices lista facturas del tenant (sin detalle), más recientes primero.
func (uc *IssueInvoiceUseCase) ListInvoices(ctx context.Context, tenantID, branchID, status string, page dto.PageRequest) ([]dto.InvoiceResponse, error) {
	switch status {
	case "", entity.InvoiceStatusActive, entity.InvoiceStatusVoided:
	default:
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return nil, err
	}
	list, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		TenantID: tenantID,
		BranchID: branchID,
		Status:   status,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(inv *entity.Invoice, _ int) dto.InvoiceResponse {
		return toInvoiceResponse(inv, nil)
	}), nil
}
