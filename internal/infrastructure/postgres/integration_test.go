package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fiscal-api/pkg/config"
	"github.com/jhoicas/Fiscal-api/pkg/logger"
)

// Pruebas contra PostgreSQL real. Solo corren con FISCAL_TEST_DATABASE_URL definido.

type pgSuite struct {
	pool     *pgxpool.Pool
	tenantID string
	ranges   *billing.RangeUseCase
	issuer   *billing.IssueInvoiceUseCase
	voider   *billing.VoidInvoiceUseCase
}

func setupPostgres(t *testing.T, now func() time.Time) *pgSuite {
	t.Helper()
	url := os.Getenv("FISCAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FISCAL_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, StatementTimeoutMS: 5000})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	loc, err := time.LoadLocation("America/Tegucigalpa")
	require.NoError(t, err)
	settings := billing.Settings{
		Location:          loc,
		LockRetries:       5,
		LockRetryInterval: 10 * time.Millisecond,
		Now:               now,
	}
	runner := postgres.NewTxRunner(pool)
	invoices := postgres.NewInvoiceRepository(pool)
	log := logger.Nop().Component("billing")

	// tenant nuevo por prueba: las corridas anteriores no interfieren
	return &pgSuite{
		pool:     pool,
		tenantID: "it-" + uuid.NewString(),
		ranges:   billing.NewRangeUseCase(runner, postgres.NewAuthorizationRangeRepository(pool), postgres.NewCorrelativeRepository(pool), settings, log),
		issuer:   billing.NewIssueInvoiceUseCase(runner, invoices, settings, log),
		voider:   billing.NewVoidInvoiceUseCase(runner, settings, log),
	}
}

func (s *pgSuite) authorize(t *testing.T, start, end string) *dto.RangeResponse {
	t.Helper()
	resp, err := s.ranges.AuthorizeRange(context.Background(), s.tenantID, dto.AuthorizeRangeRequest{
		BranchID:          "suc-1",
		DocumentType:      "FACTURA",
		CAICode:           "CAI-" + start,
		Prefix:            "000-001-01-",
		RangeStart:        start,
		RangeEnd:          end,
		AuthorizationDate: "2026-03-01",
		ExpirationDate:    "2026-12-31",
	})
	require.NoError(t, err)
	return resp
}

func (s *pgSuite) issue(saleID string) (*dto.IssueInvoiceResponse, error) {
	return s.issuer.IssueInvoice(context.Background(), s.tenantID, "user-1", dto.IssueInvoiceRequest{
		SaleID:   saleID,
		BranchID: "suc-1",
		Customer: dto.CustomerSnapshotRequest{Name: "Consumidor Final"},
		Amounts: dto.AmountsRequest{
			SubtotalExempt: decimal.RequireFromString("50.00"),
			Total:          decimal.RequireFromString("50.00"),
		},
	})
}

func fixedNow() func() time.Time {
	loc, _ := time.LoadLocation("America/Tegucigalpa")
	return func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, loc) }
}

func TestPostgres_EmisionConsecutivaYAgotamiento(t *testing.T) {
	s := setupPostgres(t, fixedNow())
	rng := s.authorize(t, "00000001", "00000003")

	for i, want := range []string{"00000001", "00000002", "00000003"} {
		resp, err := s.issue(uuid.NewString())
		require.NoError(t, err, "venta %d", i)
		assert.Equal(t, want, resp.Invoice.InvoiceNumber)
	}
	_, err := s.issue(uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRangeDepleted)

	got, err := s.ranges.GetRange(context.Background(), s.tenantID, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UsedCount)
	assert.Equal(t, "depleted", got.Status)
}

func TestPostgres_ReintentoDeVentaDevuelveMismaFactura(t *testing.T) {
	s := setupPostgres(t, fixedNow())
	s.authorize(t, "00000001", "00000010")

	first, err := s.issue("venta-1")
	require.NoError(t, err)
	again, err := s.issue("venta-1")
	require.NoError(t, err)

	assert.True(t, again.Replayed)
	assert.Equal(t, first.Invoice.ID, again.Invoice.ID)
	assert.Equal(t, first.Invoice.InvoiceNumber, again.Invoice.InvoiceNumber)
}

func TestPostgres_AsignacionConcurrenteSinDuplicados(t *testing.T) {
	s := setupPostgres(t, fixedNow())
	rng := s.authorize(t, "00000001", "00000010")

	const workers = 16
	numbers := make(chan string, workers)
	var depleted atomic.Int32

	var wg conc.WaitGroup
	for range workers {
		wg.Go(func() {
			resp, err := s.issue(uuid.NewString())
			if err != nil {
				if assert.ErrorIs(t, err, domain.ErrRangeDepleted) {
					depleted.Add(1)
				}
				return
			}
			numbers <- resp.Invoice.InvoiceNumber
		})
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "número repetido %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, 10)
	assert.Equal(t, int32(workers-10), depleted.Load())

	list, err := s.ranges.ListCorrelatives(context.Background(), s.tenantID, rng.ID, "", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, dto.RangeUsageResponse{Available: 0, Used: 10, Voided: 0}, list.Usage)
}

func TestPostgres_AnulacionEnElMes(t *testing.T) {
	s := setupPostgres(t, fixedNow())
	rng := s.authorize(t, "00000001", "00000005")

	resp, err := s.issue("venta-anular")
	require.NoError(t, err)

	out, err := s.voider.VoidInvoice(context.Background(), s.tenantID, "user-1", resp.Invoice.ID, dto.VoidInvoiceRequest{Reason: "data_entry_error"})
	require.NoError(t, err)
	assert.True(t, out.Success)

	_, err = s.voider.VoidInvoice(context.Background(), s.tenantID, "user-1", resp.Invoice.ID, dto.VoidInvoiceRequest{Reason: "data_entry_error"})
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyVoided)

	// el número anulado no se reutiliza
	next, err := s.issue("venta-siguiente")
	require.NoError(t, err)
	assert.Equal(t, "00000002", next.Invoice.InvoiceNumber)

	list, err := s.ranges.ListCorrelatives(context.Background(), s.tenantID, rng.ID, "", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, dto.RangeUsageResponse{Available: 3, Used: 1, Voided: 1}, list.Usage)
}

func TestPostgres_AltaConcurrenteDeRangosTraslapados(t *testing.T) {
	s := setupPostgres(t, fixedNow())

	const workers = 8
	var ok, overlap atomic.Int32
	var wg conc.WaitGroup
	for i := range workers {
		wg.Go(func() {
			_, err := s.ranges.AuthorizeRange(context.Background(), s.tenantID, dto.AuthorizeRangeRequest{
				BranchID:          "suc-1",
				DocumentType:      "FACTURA",
				CAICode:           fmt.Sprintf("CAI-PARALELO-%d", i),
				Prefix:            "000-001-01-",
				RangeStart:        "00000001",
				RangeEnd:          "00000100",
				AuthorizationDate: "2026-03-01",
				ExpirationDate:    "2026-12-31",
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrRangeOverlap):
				overlap.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(workers-1), overlap.Load())

	list, err := s.ranges.ListRanges(context.Background(), s.tenantID, "suc-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
