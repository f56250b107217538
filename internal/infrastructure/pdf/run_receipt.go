// Package pdf genera el comprobante imprimible de una producción (remisión de planta).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + versión   │  N° producción + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Silo / Volumen / Cemento / Pedido                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Material | Cantidad | Unidad | Costo                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + firma del operador                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ production.ReceiptGenerator = (*RunReceiptGenerator)(nil)

// RunReceiptGenerator implementa production.ReceiptGenerator usando Maroto v2.
type RunReceiptGenerator struct {
	plantName string
}

// NewRunReceiptGenerator construye el generador.
func NewRunReceiptGenerator(plantName string) *RunReceiptGenerator {
	return &RunReceiptGenerator{plantName: plantName}
}

// GenerateRunReceipt genera el PDF y devuelve sus bytes.
func (g *RunReceiptGenerator) GenerateRunReceipt(
	_ context.Context,
	run *entity.ProductionRun,
	recipe *entity.Recipe,
	silo *entity.StorageLocation,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de producción", true).
		WithAuthor(nonEmpty(g.plantName, "Planta"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(run, recipe))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailRows(run, silo)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDeductionRows(run.Deductions)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(run.Deductions))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(run))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto y versión (izq), número y fecha (der).
func headerRow(run *entity.ProductionRun, recipe *entity.Recipe) core.Row {
	product, name := "-", ""
	if recipe != nil {
		product = recipe.ProductCode
		name = recipe.Name
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(product, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s · versión %d", name, run.RecipeVersion), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE PRODUCCIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(shortID(run.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+run.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func detailRows(run *entity.ProductionRun, silo *entity.StorageLocation) []core.Row {
	siloName := run.SiloID
	if silo != nil {
		siloName = silo.Name
	}
	kv := func(k, v string) core.Row {
		return row.New(5).Add(
			col.New(3).Add(text.New(k, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(9).Add(text.New(v, props.Text{Size: 8, Top: 1})),
		)
	}
	rows := []core.Row{
		kv("Silo:", siloName),
		kv("Volumen:", run.Quantity.String()+" m³"),
		kv("Cemento usado:", run.CementUsed.String()+" kg"),
		kv("Estado:", run.Status),
	}
	if run.OrderID != nil {
		rows = append(rows, kv("Pedido:", *run.OrderID))
	}
	if run.ClientID != nil {
		rows = append(rows, kv("Cliente:", *run.ClientID))
	}
	return rows
}

// tableHeaderRow: encabezado de la tabla con fondo de color.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 1.5,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Material", 5, align.Left),
		h("Cantidad", 3, align.Right),
		h("Unidad", 1, align.Center),
		h("Costo", 3, align.Right),
	)
}

// tableDeductionRows: una fila por descuento.
func tableDeductionRows(deductions []entity.Deduction) []core.Row {
	out := make([]core.Row, 0, len(deductions))
	for _, d := range deductions {
		cost := d.QuantityDeducted.Mul(d.UnitCost)
		out = append(out, row.New(7).Add(
			col.New(5).Add(text.New(d.MaterialName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(3).Add(text.New(d.QuantityDeducted.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(d.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("$"+formatMoney(cost.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(deductions []entity.Deduction) core.Row {
	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(d.QuantityDeducted.Mul(d.UnitCost))
	}
	return row.New(8).Add(
		col.New(6),
		col.New(3).Add(text.New("COSTO DE MATERIALES:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: colorPrimary, Top: 1})),
		col.New(3).Add(text.New("$"+formatMoney(total.StringFixed(0)), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Color: colorPrimary, Top: 1})),
	)
}

// footerRow: QR con el ID completo y línea de firma.
func footerRow(run *entity.ProductionRun) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(run.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Registrado por: "+nonEmpty(run.CreatedBy, "-"), props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Firma operador: ______________________________", props.Text{Size: 9, Top: 24, Left: 3}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return "N° " + id[:8]
	}
	return "N° " + id
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
