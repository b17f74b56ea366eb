package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

func voidReq(reason string) dto.VoidInvoiceRequest {
	return dto.VoidInvoiceRequest{Reason: reason, Notes: "cliente devolvió la mercadería"}
}

func TestVoidInvoice_MismoMes(t *testing.T) {
	h := newHarness(t)
	rng := h.authorize(t, "00000001", "00000003")
	for _, sale := range []string{"venta-1", "venta-2", "venta-3"} {
		_, err := h.issue(sale)
		require.NoError(t, err)
	}
	second, err := h.issuer.ListInvoices(ctx, tenantID, "", "", dto.PageRequest{})
	require.NoError(t, err)
	var target dto.InvoiceResponse
	for _, inv := range second {
		if inv.InvoiceNumber == "00000002" {
			target = inv
		}
	}
	require.NotEmpty(t, target.ID)

	h.clock.Set(time.Date(2026, 3, 31, 23, 30, 0, 0, h.loc))
	resp, err := h.voider.VoidInvoice(ctx, tenantID, userID, target.ID, voidReq(entity.VoidReasonReturn))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "00000002", resp.InvoiceNumber)

	got, err := h.issuer.GetInvoice(ctx, tenantID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusVoided, got.Status)
	assert.Equal(t, entity.VoidReasonReturn, got.VoidReason)
	require.NotNil(t, got.VoidedAt)

	// El correlativo queda anulado y los contadores del CAI no cambian.
	usage, used := h.usage(t, rng.ID)
	assert.Equal(t, int64(3), used)
	assert.Equal(t, dto.RangeUsageResponse{Available: 0, Used: 2, Voided: 1}, usage)
	assert.Equal(t, used, usage.Used+usage.Voided)

	// El número anulado nunca vuelve al pool.
	_, err = h.issue("venta-4")
	require.ErrorIs(t, err, domain.ErrRangeDepleted)

	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, target.ID, voidReq(entity.VoidReasonReturn))
	require.ErrorIs(t, err, domain.ErrInvoiceAlreadyVoided)
}

func TestVoidInvoice_PeriodoCerrado(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000003")
	issued, err := h.issue("venta-1")
	require.NoError(t, err)

	// 1 de abril a las 00:10 en Tegucigalpa: marzo ya cerró aunque en UTC siga siendo 1 de abril 06:10.
	h.clock.Set(time.Date(2026, 4, 1, 0, 10, 0, 0, h.loc))
	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, issued.Invoice.ID, voidReq(entity.VoidReasonDataEntryError))
	require.ErrorIs(t, err, domain.ErrVoidNotAllowed)

	got, err := h.issuer.GetInvoice(ctx, tenantID, issued.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusActive, got.Status)
	assert.Empty(t, got.VoidReason)
	assert.Nil(t, got.VoidedAt)
}

func TestVoidInvoice_Rechazos(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000003")
	issued, err := h.issue("venta-1")
	require.NoError(t, err)

	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, issued.Invoice.ID, voidReq("me arrepentí"))
	require.ErrorIs(t, err, domain.ErrInvalidVoidReason)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.voider.VoidInvoice(ctx, "otro-tenant", userID, issued.Invoice.ID, voidReq(entity.VoidReasonOther))
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, "00000000-0000-0000-0000-000000000000", voidReq(entity.VoidReasonOther))
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, "no-es-uuid", voidReq(entity.VoidReasonOther))
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := h.issuer.GetInvoice(ctx, tenantID, issued.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusActive, got.Status)
}

func TestVoidInvoice_ReemitirLaVentaDevuelveLaAnulada(t *testing.T) {
	h := newHarness(t)
	h.authorize(t, "00000001", "00000003")
	issued, err := h.issue("venta-1")
	require.NoError(t, err)
	_, err = h.voider.VoidInvoice(ctx, tenantID, userID, issued.Invoice.ID, voidReq(entity.VoidReasonDuplicate))
	require.NoError(t, err)

	again, err := h.issue("venta-1")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, issued.Invoice.ID, again.Invoice.ID)
	assert.Equal(t, entity.InvoiceStatusVoided, again.Invoice.Status)
}
