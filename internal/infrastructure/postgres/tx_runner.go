package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ billing.FiscalTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunFiscal inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de contención (40001, 40P01, 55P03) salen como domain.ErrTransientConflict.
func (r *TxRunner) RunFiscal(ctx context.Context, fn func(
	rangeRepo repository.AuthorizationRangeRepository,
	correlativeRepo repository.CorrelativeRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapTxError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rangeRepo := NewAuthorizationRangeRepository(tx)
	correlativeRepo := NewCorrelativeRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(rangeRepo, correlativeRepo, invoiceRepo); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
