// Package pdf genera el reporte PDF de clientes sin compra reciente.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtro     │  Actualizado + Generado      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Clientes | Monto perdido | Provincias | Peor prov. │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA PROVINCIAS: Provincia | Clientes | Total | Promedios  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA CLIENTES: Cliente | Tipo | Contacto | Últ. | Total    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ churn.PDFRenderer = (*TargetCustomersPDF)(nil)

// TargetCustomersPDF implementa churn.PDFRenderer usando Maroto v2.
type TargetCustomersPDF struct {
	storeName string
	loc       *time.Location
	printer   *message.Printer
	now       func() time.Time
}

// NewTargetCustomersPDF construye el generador. loc es la zona horaria en que se
// muestran las fechas; los montos se formatean en es-AR.
func NewTargetCustomersPDF(storeName string, loc *time.Location) *TargetCustomersPDF {
	if loc == nil {
		loc = time.Local
	}
	return &TargetCustomersPDF{
		storeName: storeName,
		loc:       loc,
		printer:   message.NewPrinter(language.MustParse("es-AR")),
		now:       time.Now,
	}
}

// RenderTargetCustomers genera el PDF y devuelve sus bytes.
func (g *TargetCustomersPDF) RenderTargetCustomers(_ context.Context, report churn.TargetReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Clientes sin compra reciente", true).
		WithAuthor(nonEmpty(g.storeName, "PrestaShop"), true).
		Build()

	m := maroto.New(cfg)

	geo := report.Geography
	if geo == nil {
		geo = churn.BuildGeography(report.Snapshot.Data)
	}

	m.AddRows(g.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.summaryRow(geo))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(geo.Provincias) > 0 {
		m.AddRows(sectionTitle("PÉRDIDA POR PROVINCIA"))
		m.AddRows(provinceHeaderRow())
		m.AddRows(g.provinceRows(geo.Provincias)...)
		m.AddRows(line.NewRow(4))
	}

	m.AddRows(sectionTitle("CLIENTES"))
	if len(report.Snapshot.Data) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No hay clientes para el filtro seleccionado.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	} else {
		m.AddRows(customerHeaderRow())
		m.AddRows(g.customerRows(report.Snapshot.Data)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y filtro (izq), fechas de actualización y generación (der).
func (g *TargetCustomersPDF) headerRow(report churn.TargetReport) core.Row {
	updated := "sin fecha"
	if ts := report.Snapshot.UpdatedAt; ts != nil {
		updated = ts.In(g.loc).Format("02/01/2006 15:04")
	}
	filter := "Todos los tipos de cliente"
	if report.Tipo != "" {
		filter = "Tipo de cliente: " + report.Tipo
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("CLIENTES SIN COMPRA RECIENTE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(filter, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(nonEmpty(g.storeName, "PrestaShop"), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Actualizado: "+updated, props.Text{
				Size: 8, Align: align.Right, Top: 7,
			}),
			text.New("Generado: "+g.now().In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

// summaryRow: totales del reporte y la provincia con más pérdida.
func (g *TargetCustomersPDF) summaryRow(geo *dto.GeographyResponse) core.Row {
	worst := "—"
	if geo.PeorProvincia != nil {
		worst = fmt.Sprintf("%s (%s)", geo.PeorProvincia.Provincia, g.money(geo.PeorProvincia.TotalPerdido))
	}

	box := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 6}),
		)
	}
	return row.New(16).Add(
		box("Clientes", strconv.Itoa(geo.TotalClientes)),
		box("Monto perdido (4 meses)", g.money(geo.TotalPerdido)),
		box("Provincias afectadas", strconv.Itoa(geo.ProvinciasAfectadas)),
		box("Peor provincia", worst),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	))
}

// tableHeader cabecera con fondo primario y texto blanco.
func tableHeader(cols ...core.Col) core.Row {
	return row.New(7).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(cols...)
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 1.5, Left: 1, Right: 1,
	}))
}

func provinceHeaderRow() core.Row {
	return tableHeader(
		headerCol("Provincia", 3, align.Left),
		headerCol("Clientes", 1, align.Center),
		headerCol("Pedidos", 1, align.Center),
		headerCol("Total perdido", 3, align.Right),
		headerCol("Prom. pedido", 2, align.Right),
		headerCol("Prom. cliente", 2, align.Right),
	)
}

func (g *TargetCustomersPDF) provinceRows(list []dto.ProvinceSummaryDTO) []core.Row {
	rows := make([]core.Row, 0, len(list))
	for i, p := range list {
		r := row.New(6).Add(
			col.New(3).Add(cell(p.Provincia, align.Left)),
			col.New(1).Add(cell(strconv.Itoa(p.TotalClientes), align.Center)),
			col.New(1).Add(cell(strconv.Itoa(p.TotalPedidos), align.Center)),
			col.New(3).Add(cell(g.money(p.TotalPerdido), align.Right)),
			col.New(2).Add(cell(g.money(p.PromedioPorPedido), align.Right)),
			col.New(2).Add(cell(g.money(p.PromedioPorCliente), align.Right)),
		)
		rows = append(rows, striped(r, i))
	}
	return rows
}

func customerHeaderRow() core.Row {
	return tableHeader(
		headerCol("Cliente", 3, align.Left),
		headerCol("Tipo", 2, align.Left),
		headerCol("Contacto", 3, align.Left),
		headerCol("Últ. compra", 2, align.Center),
		headerCol("Total 4m", 2, align.Right),
	)
}

// customerRows: una fila por cliente objetivo, con email y teléfono juntos.
func (g *TargetCustomersPDF) customerRows(targets []entity.TargetCustomer) []core.Row {
	rows := make([]core.Row, 0, len(targets))
	for i, c := range targets {
		contact := c.Email
		if c.Phone != "" {
			contact += "\n" + c.Phone
		}
		r := row.New(9).Add(
			col.New(3).Add(
				cell(c.FirstName+" "+c.LastName, align.Left),
				text.New(nonEmpty(c.Province, dto.SinProvincia), props.Text{
					Size: 6.5, Top: 5, Left: 1, Color: colorGray,
				}),
			),
			col.New(2).Add(cell(c.CustomerType, align.Left)),
			col.New(3).Add(text.New(contact, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(cell(shortDate(c.LastOrder), align.Center)),
			col.New(2).Add(cell(
				fmt.Sprintf("%s (%d)", g.money(c.TotalAmountLast4Months), c.OrdersCountLast4Months),
				align.Right,
			)),
		)
		rows = append(rows, striped(r, i))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cell(s string, a align.Type) core.Component {
	return text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1})
}

func striped(r core.Row, i int) core.Row {
	if i%2 == 1 {
		return r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

// money formatea en pesos con separadores es-AR. Ej: 1234.5 → "$ 1.234,50".
func (g *TargetCustomersPDF) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$ %.2f", f)
}

// shortDate "2024-02-10 10:00:00" → "10/02/2024". Si no se puede leer, se deja igual.
func shortDate(s string) string {
	t, err := time.Parse(entity.DateTimeLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
