package fiscal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiscal-api/internal/domain"
)

// Tolerance diferencia máxima admitida entre lo declarado por el cliente y lo recalculado.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Amounts desglose monetario de una factura (punto fijo, 2 decimales).
type Amounts struct {
	SubtotalTaxed  decimal.Decimal
	SubtotalExempt decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Subtotal gravado + exento.
func (a Amounts) Subtotal() decimal.Decimal {
	return a.SubtotalTaxed.Add(a.SubtotalExempt)
}

// ExpectedTotal total según la identidad fiscal: gravado + exento - descuento + impuesto.
func (a Amounts) ExpectedTotal() decimal.Decimal {
	return a.SubtotalTaxed.Add(a.SubtotalExempt).Sub(a.Discount).Add(a.Tax)
}

// Line línea de venta tal como la envía la caja.
type Line struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje en [0, 100] (15 = ISV 15%); 0 = exento
}

// ComputedLine línea con base neta e impuesto recalculados. TaxRate queda como fracción (0.15).
type ComputedLine struct {
	Line
	Subtotal decimal.Decimal // Quantity*UnitPrice - Discount
	Tax      decimal.Decimal // redondeado a 2 decimales; el impuesto del encabezado es la suma de estos
}

// RateFromPercent convierte la tasa en porcentaje (15) a fracción (0.15).
// Fuera de [0, 100] devuelve ErrInvalidInput.
func RateFromPercent(percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: tasa de impuesto %s fuera de [0, 100]", domain.ErrInvalidInput, percent.String())
	}
	return percent.Div(hundred), nil
}

// Reconcile recalcula el desglose en el servidor y lo compara con lo declarado.
// Con líneas, gravado/exento/descuento/impuesto salen de ellas; sin líneas se validan
// los componentes declarados. En ambos casos el total declarado debe coincidir con
// gravado + exento - descuento + impuesto dentro de Tolerance; si no, ErrAmountMismatch.
// El resultado trae todo redondeado a 2 decimales y Total recalculado (la identidad se
// cumple exactamente sobre lo que se persiste).
func Reconcile(declared Amounts, lines []Line) (Amounts, []ComputedLine, error) {
	if err := nonNegative(declared); err != nil {
		return Amounts{}, nil, err
	}
	computed := Amounts{
		SubtotalTaxed:  declared.SubtotalTaxed.Round(2),
		SubtotalExempt: declared.SubtotalExempt.Round(2),
		Discount:       declared.Discount.Round(2),
		Tax:            declared.Tax.Round(2),
	}

	var out []ComputedLine
	if len(lines) > 0 {
		fromLines, cl, err := computeLines(lines)
		if err != nil {
			return Amounts{}, nil, err
		}
		checks := []struct {
			name               string
			declared, computed decimal.Decimal
		}{
			{"subtotal gravado", declared.SubtotalTaxed, fromLines.SubtotalTaxed},
			{"subtotal exento", declared.SubtotalExempt, fromLines.SubtotalExempt},
			{"descuento", declared.Discount, fromLines.Discount},
			{"impuesto", declared.Tax, fromLines.Tax},
		}
		for _, c := range checks {
			if !withinTolerance(c.declared, c.computed) {
				return Amounts{}, nil, fmt.Errorf("%w: %s declarado %s, calculado %s",
					domain.ErrAmountMismatch, c.name, c.declared.StringFixed(2), c.computed.StringFixed(2))
			}
		}
		computed = fromLines
		out = cl
	}

	if computed.Discount.GreaterThan(computed.Subtotal()) {
		return Amounts{}, nil, fmt.Errorf("%w: el descuento %s supera el subtotal %s",
			domain.ErrInvalidInput, computed.Discount.StringFixed(2), computed.Subtotal().StringFixed(2))
	}
	computed.Total = computed.ExpectedTotal().Round(2)
	if !withinTolerance(declared.Total, computed.Total) {
		return Amounts{}, nil, fmt.Errorf("%w: total declarado %s, calculado %s",
			domain.ErrAmountMismatch, declared.Total.StringFixed(2), computed.Total.StringFixed(2))
	}
	return computed, out, nil
}

func computeLines(lines []Line) (Amounts, []ComputedLine, error) {
	var a Amounts
	out := make([]ComputedLine, 0, len(lines))
	for i, l := range lines {
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.IsNegative() || l.Discount.IsNegative() {
			return Amounts{}, nil, fmt.Errorf("%w: línea %d con valores inválidos", domain.ErrInvalidInput, i+1)
		}
		gross := l.Quantity.Mul(l.UnitPrice)
		if l.Discount.GreaterThan(gross) {
			return Amounts{}, nil, fmt.Errorf("%w: línea %d con descuento mayor al importe", domain.ErrInvalidInput, i+1)
		}
		rate, err := RateFromPercent(l.TaxRate)
		if err != nil {
			return Amounts{}, nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		base := gross.Sub(l.Discount)
		tax := base.Mul(rate).Round(2)
		if rate.IsZero() {
			a.SubtotalExempt = a.SubtotalExempt.Add(gross)
		} else {
			a.SubtotalTaxed = a.SubtotalTaxed.Add(gross)
		}
		a.Discount = a.Discount.Add(l.Discount)
		a.Tax = a.Tax.Add(tax)
		line := l
		line.TaxRate = rate
		out = append(out, ComputedLine{Line: line, Subtotal: base.Round(2), Tax: tax})
	}
	a.SubtotalTaxed = a.SubtotalTaxed.Round(2)
	a.SubtotalExempt = a.SubtotalExempt.Round(2)
	a.Discount = a.Discount.Round(2)
	return a, out, nil
}

func nonNegative(a Amounts) error {
	for _, v := range []decimal.Decimal{a.SubtotalTaxed, a.SubtotalExempt, a.Discount, a.Tax, a.Total} {
		if v.IsNegative() {
			return fmt.Errorf("%w: los montos no pueden ser negativos", domain.ErrInvalidInput)
		}
	}
	return nil
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
