package repository

import (
	"context"

	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	TenantID string
	BranchID string // vacío = todas
	Status   string // vacío = todos
	Limit    int
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice y detalles.
type InvoiceRepository interface {
	// Create persiste la cabecera. ErrDuplicate si ya existe una factura para el correlativo o la venta.
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate igual que GetByID pero bloquea la fila (anulación).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// GetBySaleID busca la factura emitida para una venta (idempotencia).
	GetBySaleID(ctx context.Context, tenantID, saleID string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	// MarkVoided persiste los campos de anulación. ErrConflict si la factura no estaba activa.
	MarkVoided(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, error)
}
