// Package pdf genera la remisión impresa que viaja con cada traspaso.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Origen → Destino       │  N° Traspaso + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO / TIPO / NOTAS                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Enviado | Recibido | Diferencia    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES + QR del traspaso + firmas                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

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

	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ transfer.ManifestGenerator = (*ManifestGenerator)(nil)

// ManifestGenerator implementa transfer.ManifestGenerator con Maroto v2.
type ManifestGenerator struct{}

// NewManifestGenerator construye el generador.
func NewManifestGenerator() *ManifestGenerator { return &ManifestGenerator{} }

// Generate genera el PDF de la remisión y devuelve sus bytes.
func (g *ManifestGenerator) Generate(m transfer.Manifest) ([]byte, error) {
	if m.Transfer == nil {
		return nil, fmt.Errorf("pdf: remisión sin traspaso")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión de traspaso "+m.Transfer.ID, true).
		Build()

	mt := maroto.New(cfg)

	mt.AddRows(headerRow(m))
	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	mt.AddRows(statusRow(m.Transfer))
	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	mt.AddRows(tableHeaderRow())
	mt.AddRows(tableRows(m.Lines)...)

	mt.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	mt.AddRows(footerRow(m))

	doc, err := mt.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar remisión: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(m transfer.Manifest) core.Row {
	t := m.Transfer
	return row.New(20).Add(
		col.New(7).Add(
			text.New("REMISIÓN DE TRASPASO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Origen: %s", branchLabel(m.Origin, t.OriginBranchID)), props.Text{
				Size: 9, Top: 9,
			}),
			text.New(fmt.Sprintf("Destino: %s", branchLabel(m.Destination, t.DestinationBranchID)), props.Text{
				Size: 9, Top: 14,
			}),
		),
		col.New(5).Add(
			text.New("N° "+t.ID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+t.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func statusRow(t *entity.Transfer) core.Row {
	info := fmt.Sprintf("Estado: %s   |   Tipo: %s   |   Despachó: %s",
		t.State, t.Kind, nonEmpty(t.CreatedBy, "—"))
	if t.ReceivedAt != nil {
		info += fmt.Sprintf("   |   Recibió: %s (%s)", nonEmpty(t.ReceivedBy, "—"), t.ReceivedAt.Format("02/01/2006 15:04"))
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(info, props.Text{Size: 8, Top: 1, Color: colorGray}),
			text.New("Notas: "+nonEmpty(t.Notes, "—"), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Enviado", 2, align.Right),
		h("Recibido", 2, align.Right),
		h("Diferencia", 2, align.Right),
	)
}

func tableRows(lines []transfer.ManifestLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		received, diff := "", ""
		diffColor := colorGray
		if l.Received != nil {
			received = strconv.FormatInt(*l.Received, 10)
			d := l.Sent - *l.Received
			diff = strconv.FormatInt(d, 10)
			if d != 0 {
				diffColor = colorAlert
			}
		}
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.FormatInt(l.Sent, 10), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(received, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(diff, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: diffColor})),
		))
	}
	return out
}

// footerRow totales, QR con el ID del traspaso (escaneable al recibir) y espacio para firmas.
func footerRow(m transfer.Manifest) core.Row {
	t := m.Transfer
	totals := fmt.Sprintf("Total enviado: %d", t.TotalSent())
	if t.State == entity.TransferReceived {
		totals += fmt.Sprintf("   |   Total recibido: %d", t.TotalReceived())
	}
	valued := "Valor al costo: $" + m.TotalValue.StringFixed(2)
	if m.TotalShrink.IsPositive() {
		valued += "   |   Merma: $" + m.TotalShrink.StringFixed(2)
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(t.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(totals, props.Text{Style: fontstyle.Bold, Size: 10, Top: 3, Left: 3, Color: colorPrimary}),
			text.New(valued, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("Entrega: ______________________", props.Text{Size: 9, Top: 20, Left: 3}),
			text.New("Recibe: ______________________", props.Text{Size: 9, Top: 30, Left: 3}),
		),
	)
}

func branchLabel(b *entity.Branch, fallback string) string {
	if b == nil || b.Name == "" {
		return fallback
	}
	return b.Name
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
