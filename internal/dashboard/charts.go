package dashboard

import (
	"html/template"

	"github.com/odyssey-erp/companyhub/internal/dashboard/svg"
)

const (
	chartWidth  = 560
	chartHeight = 260
	pieSize     = 240
)

// BuildCharts renders the SVG charts for the loaded sections. Sections with
// no data leave their chart empty.
func BuildCharts(ov Overview) Charts {
	var charts Charts
	if n := len(ov.Sales); n > 0 {
		months := make([]string, n)
		sales := make([]float64, n)
		orders := make([]float64, n)
		for i, p := range ov.Sales {
			months[i] = p.Month
			sales[i] = p.Sales
			orders[i] = float64(p.Orders)
		}
		charts.Sales = orEmpty(svg.Line(chartWidth, chartHeight, sales, months, svg.LineOpts{
			Title:       "Monthly sales",
			Description: "Sales amount per month",
			ShowDots:    true,
		}))
		charts.Orders = orEmpty(svg.Line(chartWidth, chartHeight, orders, months, svg.LineOpts{
			Title:       "Orders per month",
			Description: "Number of orders per month",
			StrokeColor: svg.Palette[1],
			FillColor:   "rgba(16,185,129,0.12)",
			ShowDots:    true,
		}))
	}
	if n := len(ov.Production); n > 0 {
		months := make([]string, n)
		produced := make([]float64, n)
		target := make([]float64, n)
		for i, p := range ov.Production {
			months[i] = p.Month
			produced[i] = p.Produced
			target[i] = p.Target
		}
		charts.Production = orEmpty(svg.Bars(chartWidth, chartHeight, produced, target, months, svg.BarOpts{
			Title:        "Production performance",
			Description:  "Units produced against target per month",
			SeriesALabel: "Produced",
			SeriesBLabel: "Target",
		}))
	}
	if len(ov.Distribution) > 0 {
		slices := make([]svg.Slice, len(ov.Distribution))
		for i, d := range ov.Distribution {
			slices[i] = svg.Slice{Label: d.Name, Value: d.Value}
		}
		charts.Distribution = orEmpty(svg.Pie(pieSize, slices, svg.PieOpts{
			Title:       "Inventory distribution",
			Description: "Share of stock by location",
			ShowLegend:  true,
		}))
	}
	return charts
}

func orEmpty(html template.HTML, err error) template.HTML {
	if err != nil {
		return ""
	}
	return html
}
