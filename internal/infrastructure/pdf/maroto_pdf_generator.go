// Package pdf implementa la representación impresa de la factura fiscal (régimen SAR, Honduras).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RTN  │  Tipo doc + N° + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección                                           │
//	│  CLIENTE: Nombre + RTN/Identidad + dirección                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | ISV | Subtotal         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Gravado / Exento / Descuento / ISV / TOTAL         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER SAR: CAI + rango autorizado + fecha límite + QR      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorVoid    = &props.Color{Red: 190, Green: 30, Blue: 30}
)

var documentTitles = map[string]string{
	entity.DocumentTypeInvoice:       "FACTURA",
	entity.DocumentTypeCreditNote:    "NOTA DE CRÉDITO",
	entity.DocumentTypeDebitNote:     "NOTA DE DÉBITO",
	entity.DocumentTypeReceipt:       "RECIBO",
	entity.DocumentTypeExportInvoice: "FACTURA DE EXPORTACIÓN",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	loc     *time.Location
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Las fechas se imprimen en loc (zona fiscal).
func NewMarotoPDFGenerator(loc *time.Location) *MarotoPDFGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoPDFGenerator{
		loc:     loc,
		printer: message.NewPrinter(language.LatinAmericanSpanish),
	}
}

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc billing.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Range == nil {
		return nil, fmt.Errorf("pdf: factura y CAI son obligatorios")
	}
	inv, rng := doc.Invoice, doc.Range

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(inv.DocumentType)+" "+rng.Prefix+inv.InvoiceNumber, true).
		WithAuthor(doc.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	if inv.Status == entity.InvoiceStatusVoided {
		m.AddRows(g.voidRow(inv))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(doc.Issuer))
	m.AddRows(customerRow(inv.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc.Details)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.fiscalFooterRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + RTN (izq) y tipo de documento + número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(doc billing.InvoiceDocument) core.Row {
	inv, rng := doc.Invoice, doc.Range
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(doc.Issuer.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RTN: "+nonEmpty(doc.Issuer.RTN, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(inv.DocumentType), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+rng.Prefix+inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.IssuedAt.In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// voidRow: leyenda de anulación; el número sigue impreso porque nunca se reutiliza.
func (g *MarotoPDFGenerator) voidRow(inv *entity.Invoice) core.Row {
	legend := "DOCUMENTO ANULADO"
	if inv.VoidedAt != nil {
		legend += " el " + inv.VoidedAt.In(g.loc).Format("02/01/2006")
	}
	legend += " (motivo: " + inv.VoidReason + ")"
	return row.New(9).Add(col.New(12).Add(
		text.New(legend, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: colorVoid, Top: 2,
		}),
	))
}

func issuerRow(issuer billing.Issuer) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Dirección: "+nonEmpty(issuer.Address, "—"), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func customerRow(customer entity.CustomerSnapshot) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RTN/Identidad: %s   |   Dirección: %s",
				nonEmpty(customer.TaxID, "Consumidor final"),
				nonEmpty(customer.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("ISV%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea; sin líneas se imprime una sola con el total.
func (g *MarotoPDFGenerator) tableDetailRows(details []*entity.InvoiceDetail) []core.Row {
	if len(details) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Venta sin detalle de líneas", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(details))
	for _, d := range details {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				d.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				d.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.money(d.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				taxPercent(d.TaxRate),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				g.money(d.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: desglose fiscal alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(inv *entity.Invoice) core.Row {
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	labels := []string{"Importe gravado:", "Importe exento:", "Descuento:", "ISV:"}
	values := []decimal.Decimal{inv.SubtotalTaxed, inv.SubtotalExempt, inv.Discount, inv.Tax}

	labelCol := col.New(3)
	valueCol := col.New(3)
	for i := range labels {
		top := float64(i * 5)
		labelCol.Add(text.New(labels[i], props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		valueCol.Add(value(g.money(values[i]), top))
	}
	labelCol.Add(text.New("TOTAL A PAGAR:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 21,
	}))
	valueCol.Add(text.New(g.money(inv.Total), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 21,
	}))

	return row.New(28).Add(col.New(3), labelCol, valueCol, col.New(3))
}

// fiscalFooterRows: datos del CAI exigidos en el documento impreso + QR de verificación.
func (g *MarotoPDFGenerator) fiscalFooterRows(doc billing.InvoiceDocument) []core.Row {
	rng := doc.Range
	small := props.Text{Size: 8, Top: 1, Left: 2}

	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN FISCAL (SAR)", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(42).Add(
			col.New(8).Add(
				text.New("CAI: "+rng.CAICode, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1, Left: 2}),
				text.New(fmt.Sprintf("Rango autorizado: %s%s al %s%s", rng.Prefix, rng.RangeStart, rng.Prefix, rng.RangeEnd), withTop(small, 7)),
				text.New("Fecha límite de emisión: "+rng.ExpirationDate.Format("02/01/2006"), withTop(small, 13)),
				text.New("Fecha de autorización: "+rng.AuthorizationDate.Format("02/01/2006"), withTop(small, 19)),
				text.New("La factura es beneficio de todos. Exíjala.", props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 30, Left: 2, Color: colorPrimary,
				}),
			),
			col.New(4).Add(code.NewQr(verificationPayload(doc), props.Rect{
				Percent: 90,
				Center:  true,
			})),
		),
		row.New(8).Add(col.New(12).Add(
			text.New("Original: Cliente   |   Copia: Obligado tributario emisor", props.Text{
				Size: 6.5, Color: colorGray, Top: 2, Align: align.Center,
			}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// verificationPayload contenido del QR: RTN|CAI|número|fecha|total.
func verificationPayload(doc billing.InvoiceDocument) string {
	return strings.Join([]string{
		doc.Issuer.RTN,
		doc.Range.CAICode,
		doc.Range.Prefix + doc.Invoice.InvoiceNumber,
		doc.Invoice.IssuedAt.UTC().Format(time.RFC3339),
		doc.Invoice.Total.StringFixed(2),
	}, "|")
}

// money formatea en lempiras con separador de miles según el locale: L 1,234.50
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return "L " + g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// taxPercent tasa guardada como fracción: 0.15 → "15%".
func taxPercent(rate decimal.Decimal) string {
	return rate.Shift(2).Round(2).String() + "%"
}

func documentTitle(docType string) string {
	if t, ok := documentTitles[docType]; ok {
		return t
	}
	return docType
}

func withTop(p props.Text, top float64) props.Text {
	p.Top = top
	return p
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
