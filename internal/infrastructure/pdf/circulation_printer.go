// Package pdf genera la hoja imprimible de circulaciones (A4) con Maroto v2.
//
// Cada circulación ocupa un comprobante:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  TIPO + Estado                  │  Fecha                    │
//	│  Ítem / UOM / Cantidad / Precio / Monto          │  QR (id) │
//	│  Observaciones                                               │
//	│  Firma solicitante              │  Firma evaluador          │
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

	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

var _ inventory.CirculationPrinter = (*CirculationPrinter)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var typeLabels = map[string]string{
	entity.CircTypeDeposit:    "INGRESO",
	entity.CircTypeWithdrawal: "SALIDA",
	entity.CircTypeCapture:    "CONTEO",
}

var statusLabels = map[string]string{
	entity.EvalStatusPending:  "Pendiente",
	entity.EvalStatusApproved: "Aprobada",
	entity.EvalStatusRejected: "Rechazada",
}

// CirculationPrinter implementa inventory.CirculationPrinter.
type CirculationPrinter struct {
	title string
	now   func() time.Time
}

// NewCirculationPrinter construye el generador; title va en la cabecera de cada página.
func NewCirculationPrinter(title string) *CirculationPrinter {
	return &CirculationPrinter{title: title, now: time.Now}
}

// PrintCirculations genera el PDF y devuelve sus bytes.
func (p *CirculationPrinter) PrintCirculations(
	_ context.Context,
	circs []*entity.Circulation,
	stocks map[string]*entity.Stock,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(p.title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(p.title, p.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, c := range circs {
		m.AddRows(slipRows(c, stocks[c.StockID])...)
		m.AddRows(line.NewRow(4, props.Line{Color: colorGray, Thickness: 0.2, SizePercent: 100}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(title string, printedAt time.Time) core.Row {
	return row.New(12).Add(
		col.New(8).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
		})),
		col.New(4).Add(text.New("Impreso: "+printedAt.Format("02/01/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Top: 3, Color: colorGray,
		})),
	)
}

func slipRows(c *entity.Circulation, stock *entity.Stock) []core.Row {
	item, uom := "—", ""
	if stock != nil {
		item, uom = stock.ItemID, stock.UOM
	}
	label := props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}
	value := props.Text{Size: 9, Top: 5}

	rows := []core.Row{
		row.New(9).Add(
			col.New(8).Add(text.New(
				fmt.Sprintf("%s  ·  %s", nonEmpty(typeLabels[c.Type], strings.ToUpper(c.Type)), statusLabels[c.EvalStatus]),
				props.Text{Style: fontstyle.Bold, Size: 11, Top: 2},
			)),
			col.New(4).Add(text.New(c.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			})),
		),
		row.New(24).Add(
			col.New(3).Add(text.New("Ítem", label), text.New(item, value)),
			col.New(2).Add(text.New("Cantidad", label), text.New(c.QtyRelative.String()+" "+uom, value)),
			col.New(2).Add(text.New("Precio unit.", label), text.New("$"+formatAmount(c.UnitPrice), value)),
			col.New(2).Add(text.New("Monto", label), text.New("$"+formatAmount(c.Amount), value)),
			col.New(3).Add(code.NewQr(c.ID, props.Rect{Percent: 90, Center: true})),
		),
		row.New(10).Add(col.New(12).Add(
			text.New("Observaciones", label),
			text.New(nonEmpty(c.Remarks, "—"), props.Text{Size: 8, Top: 5}),
		)),
	}
	if c.EvalRemarks != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Evaluación: "+c.EvalRemarks, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	rows = append(rows, row.New(14).Add(
		col.New(6).Add(text.New("Solicitante: __________________", props.Text{Size: 8, Top: 8})),
		col.New(6).Add(text.New("Evaluador: __________________", props.Text{Size: 8, Top: 8, Align: align.Right})),
	))
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount redondea a 2 decimales y agrega puntos de miles a la parte entera.
// Ej: 1234567.5 → "1.234.567,50"
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, intPart[i])
	}
	return sign + string(buf) + "," + frac
}
