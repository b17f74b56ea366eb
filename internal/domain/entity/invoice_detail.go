package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de detalle de una factura.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal // 0 = exento; ISV 0.15 o 0.18
	Subtotal    decimal.Decimal // Quantity*UnitPrice - Discount
	Tax         decimal.Decimal
}
