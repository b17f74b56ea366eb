package billing_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

func TestIssueInvoice_NumerosConsecutivosHastaAgotar(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000003")

	for i, want := range []string{"00000001", "00000002", "00000003"} {
		resp, err := h.issue(fmt.Sprintf("venta-%d", i+1))
		require.NoError(t, err)
		assert.Equal(t, want, resp.Invoice.InvoiceNumber)
		assert.Equal(t, rng.ID, resp.Invoice.RangeID)
		assert.False(t, resp.Replayed)
		require.NotNil(t, resp.Alerts)
	}

	_, err := h.issue("venta-4")
	require.ErrorIs(t, err, domain.ErrRangeDepleted)

	usage, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(3), used)
	assert.Equal(t, dto.RangeUsageResponse{Available: 0, Used: 3, Voided: 0}, usage)

	got, err := h.ranges.GetRange(ctx, tenantID, rng.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RangeStatusDepleted, got.Status)
}

func TestIssueInvoice_PersisteMontosYCliente(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000010")

	req := dto.IssueInvoiceRequest{
		SaleID:   "venta-lineas",
		BranchID: branchID,
		Customer: dto.CustomerSnapshotRequest{Name: "Ferretería El Progreso", TaxID: "08011999000123"},
		Amounts: dto.AmountsRequest{
			SubtotalTaxed: d("200.00"),
			Tax:           d("30.00"),
			Total:         d("230.00"),
		},
		Items: []dto.InvoiceItemRequest{
			{Description: "Martillo", Quantity: d("2"), UnitPrice: d("100.00"), TaxRate: d("15")},
		},
	}
	resp, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.NoError(t, err)

	inv := resp.Invoice
	assert.True(t, inv.Total.Equal(d("230.00")), "total %s", inv.Total)
	assert.True(t, inv.Tax.Equal(d("30.00")), "isv %s", inv.Tax)
	assert.Equal(t, "Ferretería El Progreso", inv.Customer.Name)
	assert.Equal(t, entity.InvoiceStatusActive, inv.Status)
	require.Len(t, inv.Details, 1)
	assert.Equal(t, 1, inv.Details[0].LineNumber)

	got, err := h.issuer.GetInvoice(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Len(t, got.Details, 1)
}

func TestIssueInvoice_ImpuestoDelEncabezadoEsLaSumaDelDetalle(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000010")

	item := dto.InvoiceItemRequest{Description: "Caramelo", Quantity: d("1"), UnitPrice: d("0.05"), TaxRate: d("15")}
	req := saleRequest("venta-centavos")
	req.Amounts = dto.AmountsRequest{SubtotalTaxed: d("0.15"), Tax: d("0.02"), Total: d("0.17")}
	req.Items = []dto.InvoiceItemRequest{item, item, item}

	resp, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.NoError(t, err)

	got, err := h.issuer.GetInvoice(ctx, tenantID, resp.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 3)
	sum := decimal.Zero
	for _, det := range got.Details {
		sum = sum.Add(det.Tax)
		assert.True(t, det.TaxRate.Equal(d("15")), "tasa %s", det.TaxRate)
	}
	assert.True(t, got.Tax.Equal(sum), "encabezado %s, detalle %s", got.Tax, sum)
	assert.True(t, got.Total.Equal(got.SubtotalTaxed.Add(got.Tax)), "total %s", got.Total)
}

func TestIssueInvoice_TasaFueraDeRangoNoConsumeNumero(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000010")

	for _, rate := range []string{"-1", "100.5", "150"} {
		req := saleRequest("venta-tasa-" + rate)
		req.Items = []dto.InvoiceItemRequest{{Description: "Servicio", Quantity: d("1"), UnitPrice: d("100.00"), TaxRate: d(rate)}}
		_, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
		require.ErrorIs(t, err, domain.ErrInvalidInput, rate)
	}

	// 1 es uno por ciento, no cien
	req := saleRequest("venta-tasa-1")
	req.Amounts = dto.AmountsRequest{SubtotalTaxed: d("100.00"), Tax: d("1.00"), Total: d("101.00")}
	req.Items = []dto.InvoiceItemRequest{{Description: "Servicio", Quantity: d("1"), UnitPrice: d("100.00"), TaxRate: d("1")}}
	resp, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.NoError(t, err)
	assert.Equal(t, "00000001", resp.Invoice.InvoiceNumber)

	_, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(1), used)
}

func TestIssueInvoice_MontosQueNoCuadranNoConsumenNumero(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000003")

	req := saleRequest("venta-mal")
	req.Amounts.Total = d("99.00")
	_, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.ErrorIs(t, err, domain.ErrAmountMismatch)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	usage, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, int64(3), usage.Available)

	resp, err := h.issue("venta-bien")
	require.NoError(t, err)
	assert.Equal(t, "00000001", resp.Invoice.InvoiceNumber)
}

func TestIssueInvoice_MismaVentaDevuelveLaMismaFactura(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000005")

	first, err := h.issue("venta-1")
	require.NoError(t, err)
	again, err := h.issue("venta-1")
	require.NoError(t, err)

	assert.True(t, again.Replayed)
	assert.Nil(t, again.Alerts)
	assert.Equal(t, first.Invoice.ID, again.Invoice.ID)
	assert.Equal(t, first.Invoice.InvoiceNumber, again.Invoice.InvoiceNumber)

	_, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(1), used)
}

func TestIssueInvoice_SinCAIActivo(t *testing.T) {
	t.Run("sin ningún CAI", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.issue("venta-1")
		require.ErrorIs(t, err, domain.ErrNoActiveRange)
	})

	t.Run("CAI de otra sucursal", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.ranges.AuthorizeRange(ctx, tenantID, rangeRequest("branch-2", "00000001", "00000005"))
		require.NoError(t, err)
		_, err = h.issue("venta-1")
		require.ErrorIs(t, err, domain.ErrNoActiveRange)
	})

	t.Run("CAI vencido aunque queden números", func(t *testing.T) {
		h := newHarness(t)
		h.authorize(t, "00000001", "00000005")
		h.clock.Set(time.Date(2027, 1, 1, 8, 0, 0, 0, h.loc))
		_, err := h.issue("venta-1")
		require.ErrorIs(t, err, domain.ErrNoActiveRange)
	})

	t.Run("CAI cancelado", func(t *testing.T) {
		h := newHarness(t)
		rng := h.authorize(t, "00000001", "00000005")
		_, err := h.ranges.CancelRange(ctx, tenantID, rng.ID, dto.CancelRangeRequest{Notes: "CAI reemplazado"})
		require.NoError(t, err)
		_, err = h.issue("venta-1")
		require.ErrorIs(t, err, domain.ErrNoActiveRange)
	})
}

func TestIssueInvoice_ElUltimoDiaDeVigenciaTodaviaEmite(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000005")
	h.clock.Set(time.Date(2026, 12, 31, 23, 59, 0, 0, h.loc))

	resp, err := h.issue("venta-1")
	require.NoError(t, err)
	assert.Equal(t, "00000001", resp.Invoice.InvoiceNumber)
	assert.True(t, resp.Alerts.NeedsExpirationAlert)
}

func TestIssueInvoice_PrefiereElCAIAutorizadoMasReciente(t *testing.T) {
	h := newHarness(t)
	older := rangeRequest(branchID, "00000001", "00000005")
	older.AuthorizationDate = "2026-01-15"
	_, err := h.ranges.AuthorizeRange(ctx, tenantID, older)
	require.NoError(t, err)
	newer := h.authorize(t, "00000101", "00000105")

	resp, err := h.issue("venta-1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, resp.Invoice.RangeID)
	assert.Equal(t, "00000101", resp.Invoice.InvoiceNumber)
}

func TestIssueInvoice_ConcurrenteNuncaRepiteNumeros(t *testing.T) {
	const sales = 40
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000030")

	var (
		mu       sync.Mutex
		numbers  = make(map[string]string)
		depleted int
		wg       conc.WaitGroup
	)
	for i := range sales {
		wg.Go(func() {
			resp, err := h.issue(fmt.Sprintf("venta-%d", i))
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, domain.ErrRangeDepleted) {
				depleted++
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			prev, dup := numbers[resp.Invoice.InvoiceNumber]
			assert.False(t, dup, "número %s repetido (ventas %s y %s)", resp.Invoice.InvoiceNumber, prev, resp.Invoice.SaleID)
			numbers[resp.Invoice.InvoiceNumber] = resp.Invoice.SaleID
		})
	}
	wg.Wait()

	assert.Len(t, numbers, 30)
	assert.Equal(t, sales-30, depleted)

	usage, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(30), used)
	assert.Equal(t, used, usage.Used+usage.Voided)
	assert.Equal(t, int64(0), usage.Available)
}

func TestIssueInvoice_ConcurrenteMismaVentaEmiteUnaSolaVez(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000010")

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{})
		wg  conc.WaitGroup
	)
	for range 8 {
		wg.Go(func() {
			resp, err := h.issue("venta-repetida")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[resp.Invoice.ID] = struct{}{}
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	_, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(1), used)
}

func TestIssueInvoice_FallaAlGuardarRevierteLaReserva(t *testing.T) {
	boom := errors.New("disco lleno")
	h := newHarnessWithRunner(t, func(inner billing.FiscalTxRunner) billing.FiscalTxRunner {
		return failingInvoiceRunner{inner: inner, err: boom}
	})
	rng := h.authorize(t, "00000001", "00000003")

	_, err := h.issue("venta-1")
	require.ErrorIs(t, err, boom)

	usage, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, dto.RangeUsageResponse{Available: 3}, usage)
}

func TestIssueInvoice_ReintentaConflictosTransitorios(t *testing.T) {
	var flaky *flakyRunner
	h := newHarnessWithRunner(t, func(inner billing.FiscalTxRunner) billing.FiscalTxRunner {
		flaky = &flakyRunner{inner: inner, err: domain.ErrTransientConflict, failures: 2}
		return flaky
	})
	h.authorize(t, "00000001", "00000003")

	resp, err := h.issue("venta-1")
	require.NoError(t, err)
	assert.Equal(t, "00000001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, 3, flaky.Calls())
}

func TestIssueInvoice_AgotaLosReintentos(t *testing.T) {
	var flaky *flakyRunner
	h := newHarnessWithRunner(t, func(inner billing.FiscalTxRunner) billing.FiscalTxRunner {
		flaky = &flakyRunner{inner: inner, err: domain.ErrTransientConflict, failures: 100}
		return flaky
	})
	h.authorize(t, "00000001", "00000003")

	_, err := h.issue("venta-1")
	require.ErrorIs(t, err, domain.ErrTransientConflict)
	assert.Equal(t, h.settings.LockRetries+1, flaky.Calls())
}

func TestIssueInvoice_NoReintentaErroresDeNegocio(t *testing.T) {
	var flaky *flakyRunner
	h := newHarnessWithRunner(t, func(inner billing.FiscalTxRunner) billing.FiscalTxRunner {
		flaky = &flakyRunner{inner: inner, err: domain.ErrRangeDepleted, failures: 100}
		return flaky
	})

	_, err := h.issue("venta-1")
	require.ErrorIs(t, err, domain.ErrRangeDepleted)
	assert.Equal(t, 1, flaky.Calls())
}

func TestIssueInvoice_Validaciones(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000003")

	req := saleRequest("")
	_, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req = saleRequest("venta-1")
	req.DocumentType = "BOLETA"
	_, err = h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req = saleRequest("venta-1")
	req.Customer.Name = ""
	_, err = h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	req = saleRequest("venta-1")
	req.Customer.TaxID = "0801-1999"
	_, err = h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// RTN con guiones se guarda normalizado
	req = saleRequest("venta-1")
	req.Customer.TaxID = "0801-1999-000123"
	resp, err := h.issuer.IssueInvoice(ctx, tenantID, userID, req)
	require.NoError(t, err)
	assert.Equal(t, "08011999000123", resp.Invoice.Customer.TaxID)
	assert.Equal(t, "00000001", resp.Invoice.InvoiceNumber)
}

func TestGetInvoice_AislamientoPorTenant(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000003")
	resp, err := h.issue("venta-1")
	require.NoError(t, err)

	_, err = h.issuer.GetInvoice(ctx, "otro-tenant", resp.Invoice.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.issuer.GetInvoice(ctx, tenantID, "no-es-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListInvoices(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000010")
	for i := range 3 {
		h.clock.Set(time.Date(2026, 3, 10, 10, i, 0, 0, h.loc))
		_, err := h.issue(fmt.Sprintf("venta-%d", i))
		require.NoError(t, err)
	}

	list, err := h.issuer.ListInvoices(ctx, tenantID, "", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "00000003", list[0].InvoiceNumber)

	list, err = h.issuer.ListInvoices(ctx, tenantID, branchID, entity.InvoiceStatusVoided, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = h.issuer.ListInvoices(ctx, tenantID, "", "borrador", dto.PageRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
