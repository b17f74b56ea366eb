package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthorizeRangeRequest body para POST /api/fiscal/ranges.
// Las fechas van en formato YYYY-MM-DD.
type AuthorizeRangeRequest struct {
	BranchID          string `json:"branch_id" validate:"required,max=64"`
	DocumentType      string `json:"document_type" validate:"required,oneof=FACTURA NOTA_CREDITO NOTA_DEBITO RECIBO FACTURA_EXPORTACION"`
	CAICode           string `json:"cai_code" validate:"required,max=64"`
	Prefix            string `json:"prefix,omitempty" validate:"max=32"`
	RangeStart        string `json:"range_start" validate:"required,numeric,max=18"`
	RangeEnd          string `json:"range_end" validate:"required,numeric,max=18"`
	AuthorizationDate string `json:"authorization_date" validate:"required,datetime=2006-01-02"`
	ExpirationDate    string `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	Notes             string `json:"notes,omitempty" validate:"max=500"`
}

// CancelRangeRequest body para POST /api/fiscal/ranges/:id/cancel.
type CancelRangeRequest struct {
	Notes string `json:"notes" validate:"required,max=500"`
}

// AlertsResponse advertencias no fatales del CAI.
type AlertsResponse struct {
	AvailableCount       int64    `json:"available_count"`
	DaysUntilExpiration  int      `json:"days_until_expiration"`
	NeedsRestockAlert    bool     `json:"needs_restock_alert"`
	NeedsExpirationAlert bool     `json:"needs_expiration_alert"`
	Warnings             []string `json:"warnings,omitempty"`
}

// RangeResponse rango de autorización (CAI) en respuestas.
type RangeResponse struct {
	ID                string         `json:"id"`
	TenantID          string         `json:"tenant_id"`
	BranchID          string         `json:"branch_id"`
	DocumentType      string         `json:"document_type"`
	CAICode           string         `json:"cai_code"`
	Prefix            string         `json:"prefix,omitempty"`
	RangeStart        string         `json:"range_start"`
	RangeEnd          string         `json:"range_end"`
	TotalCount        int64          `json:"total_count"`
	UsedCount         int64          `json:"used_count"`
	AvailableCount    int64          `json:"available_count"`
	AuthorizationDate string         `json:"authorization_date"`
	ExpirationDate    string         `json:"expiration_date"`
	Status            string         `json:"status"` // estado efectivo a la fecha (incluye expired)
	Notes             string         `json:"notes,omitempty"`
	Alerts            AlertsResponse `json:"alerts"`
}

// AvailableCountResponse respuesta de GET /api/fiscal/ranges/:id/available.
type AvailableCountResponse struct {
	RangeID              string `json:"cai_id"`
	AvailableCount       int64  `json:"available_count"`
	NeedsAlert           bool   `json:"needs_alert"`
	NeedsRestockAlert    bool   `json:"needs_restock_alert"`
	NeedsExpirationAlert bool   `json:"needs_expiration_alert"`
	Threshold            int64  `json:"threshold"`
}

// CorrelativeResponse correlativo individual (auditoría).
type CorrelativeResponse struct {
	ID              string     `json:"id"`
	RangeID         string     `json:"cai_id"`
	SequenceNumber  int64      `json:"sequence_number"`
	FormattedNumber string     `json:"formatted_number"`
	Status          string     `json:"status"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	VoidedAt        *time.Time `json:"voided_at,omitempty"`
}

// RangeUsageResponse conteo de correlativos por estado, calculado desde las filas.
type RangeUsageResponse struct {
	Available int64 `json:"available"`
	Used      int64 `json:"used"`
	Voided    int64 `json:"voided"`
}

// CorrelativeListResponse respuesta de GET /api/fiscal/ranges/:id/correlatives.
type CorrelativeListResponse struct {
	Items []CorrelativeResponse `json:"items"`
	Usage RangeUsageResponse    `json:"usage"`
	Page  PageResponse          `json:"page"`
}

// NextCorrelativeResponse vista previa del próximo número (no lo reserva).
type NextCorrelativeResponse struct {
	CorrelativeID   string         `json:"correlative_id"`
	RangeID         string         `json:"cai_id"`
	FormattedNumber string         `json:"formatted_number"`
	Status          string         `json:"status"`
	Alerts          AlertsResponse `json:"alerts"`
}

// CustomerSnapshotRequest datos del cliente que se copian en la factura.
type CustomerSnapshotRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id,omitempty" validate:"max=20"`
	Address string `json:"address,omitempty" validate:"max=300"`
}

// AmountsRequest desglose declarado por la caja; el servidor lo recalcula.
type AmountsRequest struct {
	SubtotalTaxed  decimal.Decimal `json:"subtotal_taxed"`
	SubtotalExempt decimal.Decimal `json:"subtotal_exempt"`
	Discount       decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// InvoiceItemRequest línea de venta (opcional; si viene, los montos se recalculan desde aquí).
type InvoiceItemRequest struct {
	Description string          `json:"description" validate:"required,max=300"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"` // porcentaje: 15 = ISV 15%
}

// IssueInvoiceRequest body para POST /api/invoices.
// SaleID es la clave de idempotencia: reintentar la misma venta devuelve la misma factura.
type IssueInvoiceRequest struct {
	SaleID       string                  `json:"sale_id" validate:"required,max=64"`
	BranchID     string                  `json:"branch_id" validate:"required,max=64"`
	DocumentType string                  `json:"document_type,omitempty" validate:"omitempty,oneof=FACTURA NOTA_CREDITO NOTA_DEBITO RECIBO FACTURA_EXPORTACION"`
	Customer     CustomerSnapshotRequest `json:"customer" validate:"required"`
	Amounts      AmountsRequest          `json:"amounts"`
	Items        []InvoiceItemRequest    `json:"items,omitempty" validate:"dive"`
}

// CustomerSnapshotResponse cliente tal como quedó en la factura.
type CustomerSnapshotResponse struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // porcentaje
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
}

// InvoiceResponse factura fiscal con su detalle.
type InvoiceResponse struct {
	ID             string                   `json:"id"`
	BranchID       string                   `json:"branch_id"`
	DocumentType   string                   `json:"document_type"`
	RangeID        string                   `json:"cai_id"`
	CorrelativeID  string                   `json:"correlative_id"`
	SaleID         string                   `json:"sale_id"`
	InvoiceNumber  string                   `json:"invoice_number"`
	Customer       CustomerSnapshotResponse `json:"customer"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	SubtotalTaxed  decimal.Decimal          `json:"subtotal_taxed"`
	SubtotalExempt decimal.Decimal          `json:"subtotal_exempt"`
	Discount       decimal.Decimal          `json:"discount"`
	Tax            decimal.Decimal          `json:"tax"`
	Total          decimal.Decimal          `json:"total"`
	IssuedAt       time.Time                `json:"issued_at"`
	Status         string                   `json:"status"`
	VoidReason     string                   `json:"void_reason,omitempty"`
	VoidNotes      string                   `json:"void_notes,omitempty"`
	VoidedAt       *time.Time               `json:"voided_at,omitempty"`
	Details        []InvoiceDetailResponse  `json:"details,omitempty"`
}

// IssueInvoiceResponse respuesta de POST /api/invoices.
// Replayed = true cuando la venta ya tenía factura y se devolvió la existente.
type IssueInvoiceResponse struct {
	Invoice  InvoiceResponse `json:"invoice"`
	Replayed bool            `json:"replayed"`
	Alerts   *AlertsResponse `json:"alerts,omitempty"`
}

// VoidInvoiceRequest body para POST /api/invoices/:id/void.
type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required"`
	Notes  string `json:"notes,omitempty" validate:"max=500"`
}

// VoidInvoiceResponse resultado de la anulación.
type VoidInvoiceResponse struct {
	Success       bool      `json:"success"`
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	VoidedAt      time.Time `json:"voided_at"`
}
