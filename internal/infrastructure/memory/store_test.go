package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/memory"
)

var (
	ctx   = context.Background()
	today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	key   = repository.RangeKey{TenantID: "t1", BranchID: "b1", DocumentType: entity.DocumentTypeInvoice}
)

// seedRange crea un rango de n correlativos desde first, fuera de transacción.
func seedRange(t *testing.T, repos memory.Repositories, first, n int64, authDate time.Time) *entity.AuthorizationRange {
	t.Helper()
	rng := &entity.AuthorizationRange{
		TenantID:          key.TenantID,
		BranchID:          key.BranchID,
		DocumentType:      key.DocumentType,
		CAICode:           "CAI-" + authDate.Format("20060102"),
		RangeStart:        fiscal.FormatNumber(first, 8),
		RangeEnd:          fiscal.FormatNumber(first+n-1, 8),
		TotalCount:        n,
		AuthorizationDate: authDate,
		ExpirationDate:    authDate.AddDate(1, 0, 0),
		Status:            entity.RangeStatusActive,
	}
	require.NoError(t, repos.Ranges.Create(ctx, rng))
	list := make([]*entity.Correlative, 0, n)
	for i := first + n - 1; i >= first; i-- { // desordenados a propósito
		list = append(list, &entity.Correlative{RangeID: rng.ID, SequenceNumber: i, FormattedNumber: fiscal.FormatNumber(i, 8)})
	}
	require.NoError(t, repos.Correlatives.CreateBatch(ctx, list))
	return rng
}

func TestStore_ClaimEnOrdenAscendente(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	rng := seedRange(t, repos, 1, 3, today)

	for _, want := range []string{"00000001", "00000002", "00000003"} {
		c, err := repos.Correlatives.ClaimLowestAvailable(ctx, rng.ID, today)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, want, c.FormattedNumber)
		assert.Equal(t, entity.CorrelativeStatusUsed, c.Status)
		assert.NotNil(t, c.UsedAt)
	}
	c, err := repos.Correlatives.ClaimLowestAvailable(ctx, rng.ID, today)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_RollbackDeshaceTodo(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	rng := seedRange(t, repos, 1, 2, today)
	boom := errors.New("boom")

	err := s.RunFiscal(ctx, func(rr repository.AuthorizationRangeRepository, cr repository.CorrelativeRepository, ir repository.InvoiceRepository) error {
		c, err := cr.ClaimLowestAvailable(ctx, rng.ID, today)
		require.NoError(t, err)
		_, err = rr.IncrementUsed(ctx, rng.ID)
		require.NoError(t, err)
		require.NoError(t, ir.Create(ctx, &entity.Invoice{TenantID: "t1", SaleID: "S1", CorrelativeID: c.ID, Status: entity.InvoiceStatusActive}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repos.Ranges.GetByID(ctx, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UsedCount)
	counts, err := repos.Correlatives.CountByStatus(ctx, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrelativeCounts{Available: 2}, counts)
	inv, err := repos.Invoices.GetBySaleID(ctx, "t1", "S1")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestStore_IncrementUsedMarcaDepleted(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	rng := seedRange(t, repos, 1, 1, today)

	got, err := repos.Ranges.IncrementUsed(ctx, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RangeStatusDepleted, got.Status)

	_, err = repos.Ranges.IncrementUsed(ctx, rng.ID)
	assert.ErrorIs(t, err, domain.ErrRangeDepleted)
}

func TestStore_SeleccionPrefiereAutorizacionMasReciente(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	older := seedRange(t, repos, 1, 5, today.AddDate(0, -2, 0))
	newer := seedRange(t, repos, 6, 5, today.AddDate(0, -1, 0))
	require.NotEqual(t, older.ID, newer.ID)

	got, err := repos.Ranges.GetAllocatableForUpdate(ctx, key, today)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
}

func TestStore_SeleccionIgnoraVencidosYCancelados(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	seedRange(t, repos, 1, 5, today.AddDate(-2, 0, 0)) // venció hace un año

	got, err := repos.Ranges.GetAllocatableForUpdate(ctx, key, today)
	require.NoError(t, err)
	assert.Nil(t, got)
	latest, err := repos.Ranges.GetLatestUnexpired(ctx, key, today)
	require.NoError(t, err)
	assert.Nil(t, latest)

	current := seedRange(t, repos, 6, 5, today)
	require.NoError(t, repos.Ranges.UpdateStatus(ctx, current.ID, entity.RangeStatusCanceled, "error de captura"))
	got, err = repos.Ranges.GetAllocatableForUpdate(ctx, key, today)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Unicidad(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	rng := seedRange(t, repos, 1, 2, today)

	err := repos.Correlatives.CreateBatch(ctx, []*entity.Correlative{{RangeID: rng.ID, SequenceNumber: 1, FormattedNumber: "00000001"}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	c, err := repos.Correlatives.ClaimLowestAvailable(ctx, rng.ID, today)
	require.NoError(t, err)
	inv := &entity.Invoice{TenantID: "t1", SaleID: "S1", CorrelativeID: c.ID, Status: entity.InvoiceStatusActive}
	require.NoError(t, repos.Invoices.Create(ctx, inv))

	err = repos.Invoices.Create(ctx, &entity.Invoice{TenantID: "t1", SaleID: "S1", CorrelativeID: "otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	err = repos.Invoices.Create(ctx, &entity.Invoice{TenantID: "t1", SaleID: "S2", CorrelativeID: c.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	// otra empresa puede usar el mismo id de venta
	assert.NoError(t, repos.Invoices.Create(ctx, &entity.Invoice{TenantID: "t2", SaleID: "S1", CorrelativeID: "c-t2"}))
}

func TestStore_DeleteSoloSinUso(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	unused := seedRange(t, repos, 4, 3, today)

	require.NoError(t, repos.Ranges.Delete(ctx, unused.ID))
	got, err := repos.Ranges.GetByID(ctx, unused.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	counts, err := repos.Correlatives.CountByStatus(ctx, unused.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrelativeCounts{}, counts)

	used := seedRange(t, repos, 4, 3, today.AddDate(0, 0, 1))
	_, err = repos.Ranges.IncrementUsed(ctx, used.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, repos.Ranges.Delete(ctx, used.ID), domain.ErrConflict)
}

func TestStore_ListByRangePaginado(t *testing.T) {
	s := memory.NewStore()
	repos := s.NewRepositories()
	rng := seedRange(t, repos, 1, 5, today)

	page, err := repos.Correlatives.ListByRange(ctx, rng.ID, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].SequenceNumber)
	assert.Equal(t, int64(4), page[1].SequenceNumber)

	page, err = repos.Correlatives.ListByRange(ctx, rng.ID, entity.CorrelativeStatusUsed, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestStore_ContextoCancelado(t *testing.T) {
	s := memory.NewStore()
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := s.RunFiscal(cctx, func(repository.AuthorizationRangeRepository, repository.CorrelativeRepository, repository.InvoiceRepository) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
