// Package pdf genera el acta de recepción y extrae el texto de las facturas de proveedor.
//
// Layout del acta (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proveedor + NIT     │  N° Recepción + Factura      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO: estado / resultado / fechas / responsables          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Esperado | Recibido           │
//	│  TABLA: Sobrantes (producto escaneado sin línea esperada)    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES + NOTAS                                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

var _ reception.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const dateLayout = "02/01/2006 15:04"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa reception.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateReceptionReport genera el acta y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReceptionReport(report reception.Report) ([]byte, error) {
	rec := report.Reception
	if rec == nil {
		return nil, fmt.Errorf("pdf: recepción vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Acta de recepción %d", rec.ID), true).
		WithAuthor(rec.Supplier, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(statusRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("MERCANCÍA ESPERADA"))
	m.AddRows(tableHeaderRow("Código", "Descripción", "Esperado", "Recibido"))
	m.AddRows(expectedRows(report.ExpectedItems)...)

	if len(report.ExtraItems) > 0 {
		m.AddRows(row.New(3))
		m.AddRows(sectionTitle("SOBRANTES (SIN LÍNEA EN FACTURA)"))
		m.AddRows(tableHeaderRow("Código", "Producto", "", "Recibido"))
		m.AddRows(extraRows(report.ExtraItems)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))
	if rec.Notes != "" {
		m.AddRows(notesRows(rec.Notes)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: proveedor + NIT (izq) y número de recepción + factura (der).
func headerRow(rec *entity.Reception) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(rec.Supplier, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(rec.SupplierNIT, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ACTA DE RECEPCIÓN DE MERCANCÍA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", rec.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Factura: "+nonEmpty(rec.InvoiceNumber, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func statusRow(rec *entity.Reception) core.Row {
	verdict := nonEmpty(string(rec.Verdict), "sin cerrar")
	return row.New(20).Add(
		col.New(6).Add(
			text.New("ESTADO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(string(rec.Status), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Resultado: "+verdict, props.Text{Size: 8, Top: 12, Color: verdictColor(rec.Verdict)}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Creada: %s por %s", formatTime(&rec.CreatedAt), nonEmpty(rec.CreatedBy, "—")),
				props.Text{Size: 8, Top: 1, Align: align.Right, Color: colorGray}),
			text.New(fmt.Sprintf("Recibida: %s por %s", formatTime(rec.ReceivedAt), nonEmpty(rec.ReceivedBy, "—")),
				props.Text{Size: 8, Top: 7, Align: align.Right, Color: colorGray}),
			text.New(fmt.Sprintf("Aprobada: %s por %s", formatTime(rec.ApprovedAt), nonEmpty(rec.ApprovedBy, "—")),
				props.Text{Size: 8, Top: 13, Align: align.Right, Color: colorGray}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func tableHeaderRow(code, desc, expected, scanned string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h(code, 2, align.Left),
		h(desc, 6, align.Left),
		h(expected, 2, align.Right),
		h(scanned, 2, align.Right),
	)
}

// expectedRows: una fila por línea de factura; en rojo si la cantidad recibida no cuadra.
func expectedRows(items []*entity.ExpectedItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		c := colorGray
		if !it.ScannedQuantity.Equal(it.ExpectedQuantity) {
			c = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(it.ItemCode, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(it.ItemDescription, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatQty(it.ExpectedQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(it.ScannedQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: c})),
		))
	}
	return result
}

func extraRows(items []*entity.ExtraItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		code := nonEmpty(it.InternalCode, it.Barcode)
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(code, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2),
			col.New(2).Add(text.New(formatQty(it.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorAlert})),
		))
	}
	return result
}

// totalsRow: total esperado vs total recibido (esperados escaneados + sobrantes).
func totalsRow(report reception.Report) core.Row {
	expected, scanned := decimal.Zero, decimal.Zero
	for _, it := range report.ExpectedItems {
		expected = expected.Add(it.ExpectedQuantity)
		scanned = scanned.Add(it.ScannedQuantity)
	}
	for _, it := range report.ExtraItems {
		scanned = scanned.Add(it.Quantity)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Total esperado:"), label("Total recibido:")),
		col.New(3).Add(value(formatQty(expected)), value(formatQty(scanned))),
	)
}

func notesRows(notes string) []core.Row {
	return []core.Row{
		sectionTitle("NOTAS"),
		row.New(12).Add(col.New(12).Add(
			text.New(notes, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format(dateLayout)
}

// formatQty sin decimales cuando la cantidad es entera ("84"), si no con dos ("2.50").
func formatQty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

func verdictColor(v entity.Verdict) *props.Color {
	if v == entity.VerdictShortage || v == entity.VerdictOverage {
		return colorAlert
	}
	return colorGray
}
