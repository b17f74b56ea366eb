package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura fiscal.
const (
	InvoiceStatusActive = "active"
	InvoiceStatusVoided = "voided"
)

// Motivos de anulación admitidos.
const (
	VoidReasonDataEntryError   = "data_entry_error"
	VoidReasonReturn           = "return"
	VoidReasonPostSaleDiscount = "post_sale_discount"
	VoidReasonDuplicate        = "duplicate"
	VoidReasonOther            = "other"
)

// ValidVoidReason informa si r es un motivo de anulación admitido.
func ValidVoidReason(r string) bool {
	switch r {
	case VoidReasonDataEntryError, VoidReasonReturn, VoidReasonPostSaleDiscount,
		VoidReasonDuplicate, VoidReasonOther:
		return true
	}
	return false
}

// CustomerSnapshot datos del cliente copiados al momento de emitir (no es una referencia viva).
type CustomerSnapshot struct {
	Name    string
	TaxID   string // RTN o identidad
	Address string
}

// Invoice representa la cabecera de una factura fiscal ligada a exactamente un correlativo.
// Una vez anulada solo cambian los campos de anulación.
type Invoice struct {
	ID             string
	TenantID       string
	BranchID       string
	DocumentType   string
	RangeID        string
	CorrelativeID  string
	SaleID         string // venta que originó la factura (clave de idempotencia)
	InvoiceNumber  string // = FormattedNumber del correlativo
	Customer       CustomerSnapshot
	Subtotal       decimal.Decimal // SubtotalTaxed + SubtotalExempt
	SubtotalTaxed  decimal.Decimal
	SubtotalExempt decimal.Decimal
	Tax            decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal // SubtotalTaxed + SubtotalExempt - Discount + Tax
	IssuedAt       time.Time
	IssuedBy       string
	Status         string // active, voided
	VoidReason     string
	VoidNotes      string
	VoidedAt       *time.Time
	VoidedBy       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
