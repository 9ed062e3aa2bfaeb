package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

var columns = table.Row{
	"Fecha",
	"Temperatura Impulsión (°C)",
	"Caudal (m³/h)",
	"Potencia (kW)",
	"Temperatura Retorno (°C)",
	"Volumen (m³)",
	"Energía (kWh)",
	"Tiempo Funcionamiento (days)",
	"Contador Agua (m³)",
}

func cell(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// BuildTable lays the rows out with go-pretty, which both the HTML mail
// body and the CLI preview render from.
func BuildTable(rows []Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(columns)
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Date,
			cell(r.ForwardTemp),
			cell(r.Flow),
			cell(r.Power),
			cell(r.ReturnTemp),
			cell(r.Volume),
			cell(r.Energy),
			cell(r.OnTime),
			cell(r.WaterCount),
		})
	}
	return t
}

func renderHtml(month time.Time, rows []Row) string {
	return fmt.Sprintf(
		`<h1>Monthly consumption</h1>
<p>Heating and hot water readings recorded during %s %d.</p>
%s`,
		month.Month(), month.Year(),
		BuildTable(rows).RenderHTML(),
	)
}
