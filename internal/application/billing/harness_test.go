package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/memory"
	"github.com/jhoicas/Fiscal-api/pkg/logger"
)

const (
	tenantID = "tenant-1"
	branchID = "branch-1"
	userID   = "user-1"
)

var ctx = context.Background()

func tegucigalpa(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Tegucigalpa")
	require.NoError(t, err)
	return loc
}

// clock reloj manual compartido por los casos de uso del harness.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// harness arma los casos de uso sobre el store en memoria.
type harness struct {
	store    *memory.Store
	repos    memory.Repositories
	clock    *clock
	loc      *time.Location
	settings billing.Settings

	ranges       *billing.RangeUseCase
	correlatives *billing.CorrelativeUseCase
	issuer       *billing.IssueInvoiceUseCase
	voider       *billing.VoidInvoiceUseCase
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithRunner(t, nil)
}

// newHarnessWithRunner permite envolver el store con un runner de prueba (fallas, conflictos).
func newHarnessWithRunner(t *testing.T, wrap func(billing.FiscalTxRunner) billing.FiscalTxRunner) *harness {
	t.Helper()
	loc := tegucigalpa(t)
	h := &harness{
		store: memory.NewStore(),
		clock: &clock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, loc)},
		loc:   loc,
	}
	h.repos = h.store.NewRepositories()
	h.settings = billing.Settings{
		Location:          loc,
		LockRetries:       3,
		LockRetryInterval: time.Millisecond,
		Now:               h.clock.Now,
	}
	var runner billing.FiscalTxRunner = h.store
	if wrap != nil {
		runner = wrap(h.store)
	}
	log := logger.Nop().Component("billing")
	h.ranges = billing.NewRangeUseCase(h.store, h.repos.Ranges, h.repos.Correlatives, h.settings, log)
	h.correlatives = billing.NewCorrelativeUseCase(runner, h.settings, log)
	h.issuer = billing.NewIssueInvoiceUseCase(runner, h.repos.Invoices, h.settings, log)
	h.voider = billing.NewVoidInvoiceUseCase(runner, h.settings, log)
	return h
}

func rangeRequest(branch, start, end string) dto.AuthorizeRangeRequest {
	return dto.AuthorizeRangeRequest{
		BranchID:          branch,
		DocumentType:      "FACTURA",
		CAICode:           "A1B2C3-D4E5F6-" + start,
		Prefix:            "000-001-01-",
		RangeStart:        start,
		RangeEnd:          end,
		AuthorizationDate: "2026-03-01",
		ExpirationDate:    "2026-12-31",
	}
}

func (h *harness) authorize(t *testing.T, start, end string) *dto.RangeResponse {
	t.Helper()
	resp, err := h.ranges.AuthorizeRange(ctx, tenantID, rangeRequest(branchID, start, end))
	require.NoError(t, err)
	return resp
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// saleRequest venta exenta de 100.00 (el total cuadra).
func saleRequest(saleID string) dto.IssueInvoiceRequest {
	return dto.IssueInvoiceRequest{
		SaleID:   saleID,
		BranchID: branchID,
		Customer: dto.CustomerSnapshotRequest{Name: "Consumidor Final"},
		Amounts: dto.AmountsRequest{
			SubtotalExempt: d("100.00"),
			Total:          d("100.00"),
		},
	}
}

func (h *harness) issue(saleID string) (*dto.IssueInvoiceResponse, error) {
	return h.issuer.IssueInvoice(ctx, tenantID, userID, saleRequest(saleID))
}

func (h *harness) usage(t *testing.T, rangeID string) (dto.RangeUsageResponse, int64) {
	t.Helper()
	list, err := h.ranges.ListCorrelatives(ctx, tenantID, rangeID, "", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	rng, err := h.ranges.GetRange(ctx, tenantID, rangeID)
	require.NoError(t, err)
	return list.Usage, rng.UsedCount
}

// flakyRunner devuelve err en las primeras failures llamadas y luego delega.
type flakyRunner struct {
	inner    billing.FiscalTxRunner
	err      error
	failures int

	mu    sync.Mutex
	calls int
}

func (f *flakyRunner) RunFiscal(ctx context.Context, fn func(
	repository.AuthorizationRangeRepository,
	repository.CorrelativeRepository,
	repository.InvoiceRepository,
) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return f.err
	}
	return f.inner.RunFiscal(ctx, fn)
}

func (f *flakyRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingInvoiceRunner entrega un InvoiceRepository cuyo Create falla después de la asignación.
type failingInvoiceRunner struct {
	inner billing.FiscalTxRunner
	err   error
}

type failingInvoiceRepo struct {
	repository.InvoiceRepository
	err error
}

func (r failingInvoiceRepo) Create(context.Context, *entity.Invoice) error { return r.err }

func (f failingInvoiceRunner) RunFiscal(ctx context.Context, fn func(
	repository.AuthorizationRangeRepository,
	repository.CorrelativeRepository,
	repository.InvoiceRepository,
) error) error {
	return f.inner.RunFiscal(ctx, func(rr repository.AuthorizationRangeRepository, cr repository.CorrelativeRepository, ir repository.InvoiceRepository) error {
		return fn(rr, cr, failingInvoiceRepo{InvoiceRepository: ir, err: f.err})
	})
}

// recordingRunner anota, en orden, las llamadas al repositorio de CAIs hechas dentro de la transacción.
type recordingRunner struct {
	inner billing.FiscalTxRunner

	mu    sync.Mutex
	calls []string
}

type recordingRangeRepo struct {
	repository.AuthorizationRangeRepository
	rec *recordingRunner
}

func (r *recordingRunner) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recordingRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingRunner) RunFiscal(ctx context.Context, fn func(
	repository.AuthorizationRangeRepository,
	repository.CorrelativeRepository,
	repository.InvoiceRepository,
) error) error {
	return r.inner.RunFiscal(ctx, func(rr repository.AuthorizationRangeRepository, cr repository.CorrelativeRepository, ir repository.InvoiceRepository) error {
		return fn(recordingRangeRepo{AuthorizationRangeRepository: rr, rec: r}, cr, ir)
	})
}

func (r recordingRangeRepo) LockKey(ctx context.Context, key repository.RangeKey, prefix string) error {
	r.rec.record("LockKey:" + prefix)
	return r.AuthorizationRangeRepository.LockKey(ctx, key, prefix)
}

func (r recordingRangeRepo) ListByKey(ctx context.Context, key repository.RangeKey) ([]*entity.AuthorizationRange, error) {
	r.rec.record("ListByKey")
	return r.AuthorizationRangeRepository.ListByKey(ctx, key)
}

func (r recordingRangeRepo) GetAllocatable(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	r.rec.record("GetAllocatable")
	return r.AuthorizationRangeRepository.GetAllocatable(ctx, key, today)
}

func (r recordingRangeRepo) GetAllocatableForUpdate(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	r.rec.record("GetAllocatableForUpdate")
	return r.AuthorizationRangeRepository.GetAllocatableForUpdate(ctx, key, today)
}
