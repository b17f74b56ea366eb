// Package memory implementa los repositorios del motor fiscal en memoria.
// Se usa con DB_DRIVER=memory (desarrollo local) y en los tests de casos de uso;
// respeta las mismas reglas que el esquema PostgreSQL (unicidad, contadores, estados).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ billing.FiscalTxRunner = (*Store)(nil)

// Store guarda todo en mapas protegidos por un único mutex.
// Una transacción toma el mutex completo: es el equivalente del FOR UPDATE sobre el CAI,
// más grueso pero con la misma garantía de que dos asignaciones nunca se intercalan.
type Store struct {
	mu sync.Mutex

	ranges            map[string]*entity.AuthorizationRange
	correlatives      map[string]*entity.Correlative
	rangeCorrelatives map[string][]string // ids ordenados por sequence_number
	invoices          map[string]*entity.Invoice
	invoiceBySale     map[saleKey]string
	invoiceByCorr     map[string]string
	details           map[string][]*entity.InvoiceDetail
}

type saleKey struct {
	tenantID string
	saleID   string
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		ranges:            make(map[string]*entity.AuthorizationRange),
		correlatives:      make(map[string]*entity.Correlative),
		rangeCorrelatives: make(map[string][]string),
		invoices:          make(map[string]*entity.Invoice),
		invoiceBySale:     make(map[saleKey]string),
		invoiceByCorr:     make(map[string]string),
		details:           make(map[string][]*entity.InvoiceDetail),
	}
}

// txn acumula las operaciones inversas de una transacción en curso.
// nil significa "fuera de transacción": cada operación toma el mutex por su cuenta.
type txn struct {
	undo []func()
}

func (t *txn) record(f func()) {
	if t != nil {
		t.undo = append(t.undo, f)
	}
}

func (t *txn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// lock toma el mutex solo fuera de transacción (dentro, RunFiscal ya lo tiene).
func (s *Store) lock(tx *txn) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// RunFiscal ejecuta fn con el store bloqueado. Si fn devuelve error se deshacen
// todas sus escrituras, como un ROLLBACK.
// Dentro de fn solo deben usarse los repos recibidos: los de NewRepositories volverían
// a tomar el mutex.
func (s *Store) RunFiscal(ctx context.Context, fn func(
	rangeRepo repository.AuthorizationRangeRepository,
	correlativeRepo repository.CorrelativeRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{}
	err := fn(&RangeRepo{s: s, tx: tx}, &CorrelativeRepo{s: s, tx: tx}, &InvoiceRepo{s: s, tx: tx})
	if err == nil {
		err = ctxErr(ctx)
	}
	if err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Repositories repos fuera de transacción (equivalentes a los construidos sobre el pool).
type Repositories struct {
	Ranges       *RangeRepo
	Correlatives *CorrelativeRepo
	Invoices     *InvoiceRepo
}

// NewRepositories devuelve los repos del store para lecturas y escrituras sueltas.
func (s *Store) NewRepositories() Repositories {
	return Repositories{
		Ranges:       &RangeRepo{s: s},
		Correlatives: &CorrelativeRepo{s: s},
		Invoices:     &InvoiceRepo{s: s},
	}
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
