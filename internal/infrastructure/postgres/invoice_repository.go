package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	id, tenant_id, branch_id, document_type, range_id, correlative_id, sale_id, invoice_number,
	customer_name, customer_tax_id, customer_address,
	subtotal, subtotal_taxed, subtotal_exempt, tax, discount, total,
	issued_at, issued_by, status, void_reason, void_notes, voided_at, voided_by, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
// Las restricciones UNIQUE(correlative_id) y UNIQUE(tenant_id, sale_id) devuelven ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	const q = `
		INSERT INTO invoices (
			id, tenant_id, branch_id, document_type, range_id, correlative_id, sale_id, invoice_number,
			customer_name, customer_tax_id, customer_address,
			subtotal, subtotal_taxed, subtotal_exempt, tax, discount, total,
			issued_at, issued_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, q,
		invoice.ID, invoice.TenantID, invoice.BranchID, invoice.DocumentType,
		invoice.RangeID, invoice.CorrelativeID, invoice.SaleID, invoice.InvoiceNumber,
		invoice.Customer.Name, invoice.Customer.TaxID, invoice.Customer.Address,
		invoice.Subtotal, invoice.SubtotalTaxed, invoice.SubtotalExempt,
		invoice.Tax, invoice.Discount, invoice.Total,
		invoice.IssuedAt, invoice.IssuedBy, invoice.Status, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert invoice (sale %s): %w", invoice.SaleID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO invoice_details
			(id, invoice_id, line_number, description, quantity, unit_price, discount, tax_rate, subtotal, tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, q,
		detail.ID, detail.InvoiceID, detail.LineNumber, detail.Description,
		detail.Quantity, detail.UnitPrice, detail.Discount, detail.TaxRate, detail.Subtotal, detail.Tax,
	)
	if err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la fila: dos anulaciones simultáneas se serializan y la segunda ve voided.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) GetBySaleID(ctx context.Context, tenantID, saleID string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = $1 AND sale_id = $2`, tenantID, saleID)
}

func (r *InvoiceRepo) getOne(ctx context.Context, q string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetDetailsByInvoiceID obtiene las líneas de una factura ordenadas.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	const q = `
		SELECT id, invoice_id, line_number, description, quantity, unit_price, discount, tax_rate, subtotal, tax
		FROM invoice_details WHERE invoice_id = $1 ORDER BY line_number`
	rows, err := r.q.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.LineNumber, &d.Description,
			&d.Quantity, &d.UnitPrice, &d.Discount, &d.TaxRate, &d.Subtotal, &d.Tax); err != nil {
			return nil, fmt.Errorf("scan invoice detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// MarkVoided solo toca los campos de anulación; el resto de la factura es inmutable.
func (r *InvoiceRepo) MarkVoided(ctx context.Context, invoice *entity.Invoice) error {
	const q = `
		UPDATE invoices
		SET status      = 'voided',
		    void_reason = $2,
		    void_notes  = $3,
		    voided_at   = $4,
		    voided_by   = $5,
		    updated_at  = now()
		WHERE id = $1 AND status = 'active'`
	tag, err := r.q.Exec(ctx, q, invoice.ID, invoice.VoidReason, invoice.VoidNotes, invoice.VoidedAt, invoice.VoidedBy)
	if err != nil {
		return fmt.Errorf("void invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("void invoice %s: %w", invoice.ID, domain.ErrConflict)
	}
	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	q := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1
		  AND ($2 = '' OR branch_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY issued_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, q, f.TenantID, f.BranchID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.BranchID, &inv.DocumentType, &inv.RangeID, &inv.CorrelativeID,
		&inv.SaleID, &inv.InvoiceNumber,
		&inv.Customer.Name, &inv.Customer.TaxID, &inv.Customer.Address,
		&inv.Subtotal, &inv.SubtotalTaxed, &inv.SubtotalExempt, &inv.Tax, &inv.Discount, &inv.Total,
		&inv.IssuedAt, &inv.IssuedBy, &inv.Status, &inv.VoidReason, &inv.VoidNotes,
		&inv.VoidedAt, &inv.VoidedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
