// Package pdf implementa la representación impresa de la Orden de Salida de material.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + subtítulo        │  N° OS + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Cliente / Documento / Entregador                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Cantidad | Bodega                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DECLARACIÓN                                                 │
//	│  FIRMA: imagen (si existe) + línea + nombre del cliente      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 55, Green: 65, Blue: 81}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera el PDF de la orden de salida usando Maroto v2.
type MarotoPDFGenerator struct {
	title   string
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. locale define el formato de las cantidades (es-CO: 1.234,50).
func NewMarotoPDFGenerator(title, locale string) *MarotoPDFGenerator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	if title == "" {
		title = "Orden de Salida"
	}
	return &MarotoPDFGenerator{title: title, printer: message.NewPrinter(tag)}
}

// Generate genera el PDF y devuelve sus bytes. sig puede ser nil.
func (g *MarotoPDFGenerator) Generate(_ context.Context, doc exitorder.ExitDocument, sig *exitorder.Signature) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(fmt.Sprintf("%s %d", g.title, doc.Number), true).
		WithAuthor(doc.OperatorName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(dataRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc)...)

	m.AddRows(line.NewRow(4))
	m.AddRows(declarationRow(doc.Declaration))
	m.AddRows(line.NewRow(6))
	m.AddRows(signatureRows(doc, sig)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(doc exitorder.ExitDocument) core.Row {
	fecha := "—"
	if !doc.IssuedAt.IsZero() {
		fecha = doc.IssuedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Sistema de Control de Existencias", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("OS N° %d", doc.Number), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func dataRow(doc exitorder.ExitDocument) core.Row {
	detail := "Documento: " + nonEmpty(doc.ClientDocument, "—")
	if doc.OperatorName != "" {
		detail += "   |   Entregador: " + doc.OperatorName
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("DATOS DE LA OS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Cliente: "+doc.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 7, align.Left),
		h("Cantidad", 2, align.Center),
		h("Bodega", 3, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoPDFGenerator) tableDetailRows(doc exitorder.ExitDocument) []core.Row {
	result := make([]core.Row, 0, len(doc.Items.Items))
	for _, it := range doc.Items.Items {
		result = append(result, row.New(7).Add(
			col.New(7).Add(text.New(it.Product, props.Text{Size: 9, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.FormatQuantity(it.Quantity), props.Text{Size: 9, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(it.Warehouse, props.Text{Size: 9, Align: align.Left, Top: 1, Left: 1})),
		))
	}
	return result
}

func declarationRow(declaration string) core.Row {
	return row.New(22).Add(col.New(12).Add(
		text.New("DECLARACIÓN", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}),
		text.New(declaration, props.Text{Size: 9, Top: 6, Align: align.Justify}),
	))
}

func signatureRows(doc exitorder.ExitDocument, sig *exitorder.Signature) []core.Row {
	var rows []core.Row
	if sig != nil && len(sig.Image) > 0 {
		ext := extension.Png
		if sig.Format == exitorder.FormatJPEG {
			ext = extension.Jpg
		}
		rows = append(rows, row.New(28).Add(
			col.New(3),
			col.New(6).Add(image.NewFromBytes(sig.Image, ext, props.Rect{Center: true, Percent: 90})),
			col.New(3),
		))
	} else {
		rows = append(rows, row.New(20))
	}
	rows = append(rows,
		row.New(2).Add(col.New(3), col.New(6).Add(line.New(props.Line{Color: colorGray, Thickness: 0.3})), col.New(3)),
		row.New(6).Add(col.New(12).Add(text.New(doc.ClientName, props.Text{Size: 9, Align: align.Center, Top: 1}))),
		row.New(5).Add(col.New(12).Add(text.New("Firma del receptor", props.Text{
			Size: 7, Align: align.Center, Color: colorGray,
		}))),
	)
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// FormatQuantity formatea con dos decimales y separadores del locale configurado.
func (g *MarotoPDFGenerator) FormatQuantity(q decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(q.InexactFloat64(), number.Scale(2)))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
