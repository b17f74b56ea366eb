package billing

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
)

const dateLayout = "2006-01-02"

func toAlertsResponse(a fiscal.Alerts) dto.AlertsResponse {
	resp := dto.AlertsResponse{
		AvailableCount:       a.AvailableCount,
		DaysUntilExpiration:  a.DaysUntilExpiration,
		NeedsRestockAlert:    a.NeedsRestockAlert,
		NeedsExpirationAlert: a.NeedsExpirationAlert,
	}
	if a.NeedsRestockAlert {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("quedan %d correlativos disponibles en el CAI; solicite un nuevo rango al SAR", a.AvailableCount))
	}
	if a.NeedsExpirationAlert {
		if a.DaysUntilExpiration < 0 {
			resp.Warnings = append(resp.Warnings, "la fecha límite de emisión del CAI ya venció")
		} else {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("la fecha límite de emisión del CAI vence en %d días", a.DaysUntilExpiration))
		}
	}
	return resp
}

func toRangeResponse(r *entity.AuthorizationRange, alerts fiscal.Alerts, now time.Time) dto.RangeResponse {
	return dto.RangeResponse{
		ID:                r.ID,
		TenantID:          r.TenantID,
		BranchID:          r.BranchID,
		DocumentType:      r.DocumentType,
		CAICode:           r.CAICode,
		Prefix:            r.Prefix,
		RangeStart:        r.RangeStart,
		RangeEnd:          r.RangeEnd,
		TotalCount:        r.TotalCount,
		UsedCount:         r.UsedCount,
		AvailableCount:    r.AvailableCount(),
		AuthorizationDate: r.AuthorizationDate.Format(dateLayout),
		ExpirationDate:    r.ExpirationDate.Format(dateLayout),
		Status:            r.EffectiveStatus(now),
		Notes:             r.Notes,
		Alerts:            toAlertsResponse(alerts),
	}
}

func toCorrelativeResponse(c *entity.Correlative) dto.CorrelativeResponse {
	return dto.CorrelativeResponse{
		ID:              c.ID,
		RangeID:         c.RangeID,
		SequenceNumber:  c.SequenceNumber,
		FormattedNumber: c.FormattedNumber,
		Status:          c.Status,
		UsedAt:          c.UsedAt,
		VoidedAt:        c.VoidedAt,
	}
}

func toInvoiceResponse(inv *entity.Invoice, details []*entity.InvoiceDetail) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:            inv.ID,
		BranchID:      inv.BranchID,
		DocumentType:  inv.DocumentType,
		RangeID:       inv.RangeID,
		CorrelativeID: inv.CorrelativeID,
		SaleID:        inv.SaleID,
		InvoiceNumber: inv.InvoiceNumber,
		Customer: dto.CustomerSnapshotResponse{
			Name:    inv.Customer.Name,
			TaxID:   inv.Customer.TaxID,
			Address: inv.Customer.Address,
		},
		Subtotal:       inv.Subtotal,
		SubtotalTaxed:  inv.SubtotalTaxed,
		SubtotalExempt: inv.SubtotalExempt,
		Discount:       inv.Discount,
		Tax:            inv.Tax,
		Total:          inv.Total,
		IssuedAt:       inv.IssuedAt,
		Status:         inv.Status,
		VoidReason:     inv.VoidReason,
		VoidNotes:      inv.VoidNotes,
		VoidedAt:       inv.VoidedAt,
		Details: lo.Map(details, func(d *entity.InvoiceDetail, _ int) dto.InvoiceDetailResponse {
			return dto.InvoiceDetailResponse{
				LineNumber:  d.LineNumber,
				Description: d.Description,
				Quantity:    d.Quantity,
				UnitPrice:   d.UnitPrice,
				Discount:    d.Discount,
				TaxRate:     d.TaxRate.Shift(2), // fracción guardada -> porcentaje, igual que en la solicitud
				Subtotal:    d.Subtotal,
				Tax:         d.Tax,
			}
		}),
	}
}
