package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo InvoiceRepository en memoria.
type InvoiceRepo struct {
	s  *Store
	tx *txn
}

func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()

	sk := saleKey{tenantID: invoice.TenantID, saleID: invoice.SaleID}
	if _, ok := r.s.invoiceBySale[sk]; ok {
		return fmt.Errorf("insert invoice (sale %s): %w", invoice.SaleID, domain.ErrDuplicate)
	}
	if _, ok := r.s.invoiceByCorr[invoice.CorrelativeID]; ok {
		return fmt.Errorf("insert invoice (correlative %s): %w", invoice.CorrelativeID, domain.ErrDuplicate)
	}
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	cp := *invoice
	r.s.invoices[cp.ID] = &cp
	r.s.invoiceBySale[sk] = cp.ID
	r.s.invoiceByCorr[cp.CorrelativeID] = cp.ID
	r.tx.record(func() {
		delete(r.s.invoices, cp.ID)
		delete(r.s.invoiceBySale, sk)
		delete(r.s.invoiceByCorr, cp.CorrelativeID)
	})
	return nil
}

func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()
	if _, ok := r.s.invoices[detail.InvoiceID]; !ok {
		return fmt.Errorf("insert invoice detail: factura %s no existe", detail.InvoiceID)
	}
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	cp := *detail
	prev := r.s.details[cp.InvoiceID]
	r.s.details[cp.InvoiceID] = append(slices.Clone(prev), &cp)
	r.tx.record(func() {
		if prev == nil {
			delete(r.s.details, cp.InvoiceID)
			return
		}
		r.s.details[cp.InvoiceID] = prev
	})
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyInvoice(r.s.invoices[id]), nil
}

// GetByIDForUpdate dentro de RunFiscal el store ya está bloqueado completo.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) GetBySaleID(ctx context.Context, tenantID, saleID string) (*entity.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	id, ok := r.s.invoiceBySale[saleKey{tenantID: tenantID, saleID: saleID}]
	if !ok {
		return nil, nil
	}
	return copyInvoice(r.s.invoices[id]), nil
}

func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	src := r.s.details[invoiceID]
	list := make([]*entity.InvoiceDetail, 0, len(src))
	for _, d := range src {
		cp := *d
		list = append(list, &cp)
	}
	slices.SortFunc(list, func(a, b *entity.InvoiceDetail) int { return cmp.Compare(a.LineNumber, b.LineNumber) })
	return list, nil
}

func (r *InvoiceRepo) MarkVoided(ctx context.Context, invoice *entity.Invoice) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()
	e, ok := r.s.invoices[invoice.ID]
	if !ok || e.Status != entity.InvoiceStatusActive {
		return fmt.Errorf("void invoice %s: %w", invoice.ID, domain.ErrConflict)
	}
	prev := *e
	e.Status = entity.InvoiceStatusVoided
	e.VoidReason = invoice.VoidReason
	e.VoidNotes = invoice.VoidNotes
	if invoice.VoidedAt != nil {
		at := *invoice.VoidedAt
		e.VoidedAt = &at
	}
	e.VoidedBy = invoice.VoidedBy
	e.UpdatedAt = time.Now().UTC()
	r.tx.record(func() { *r.s.invoices[prev.ID] = prev })
	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	var list []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.TenantID == f.TenantID &&
			(f.BranchID == "" || inv.BranchID == f.BranchID) &&
			(f.Status == "" || inv.Status == f.Status) {
			list = append(list, copyInvoice(inv))
		}
	}
	slices.SortFunc(list, func(a, b *entity.Invoice) int {
		return cmp.Or(b.IssuedAt.Compare(a.IssuedAt), cmp.Compare(b.InvoiceNumber, a.InvoiceNumber))
	})
	return paginate(list, f.Limit, f.Offset), nil
}

func copyInvoice(inv *entity.Invoice) *entity.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	if inv.VoidedAt != nil {
		at := *inv.VoidedAt
		cp.VoidedAt = &at
	}
	return &cp
}
