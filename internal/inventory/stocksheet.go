package inventory

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
)

var (
	sheetAccent = &props.Color{Red: 31, Green: 64, Blue: 104}
	sheetMuted  = &props.Color{Red: 110, Green: 110, Blue: 110}
	sheetAlert  = &props.Color{Red: 176, Green: 32, Blue: 32}
)

// StockSheet renders the warehouse listing with low-stock flags and totals.
func (s *Service) StockSheet(ctx context.Context, warehouse string, now time.Time) ([]byte, error) {
	items, err := s.List(ctx, warehouse, "")
	if err != nil {
		return nil, err
	}
	return RenderStockSheet(WarehouseLabel(warehouse), items, now)
}

// RenderStockSheet lays out items as an A4 PDF.
func RenderStockSheet(title string, items []Item, now time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title+" stock sheet", true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(sheetHeader(title, now))
	m.AddRows(line.NewRow(1, props.Line{Color: sheetAccent, Thickness: 0.5}))
	m.AddRows(sheetColumns())
	m.AddRows(sheetRows(items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: sheetAccent, Thickness: 0.3}))
	m.AddRows(sheetTotals(Summarize(items)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("inventory: stock sheet: %w", err)
	}
	return doc.GetBytes(), nil
}

func sheetHeader(title string, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: sheetAccent, Top: 1}),
			text.New("Stock sheet", props.Text{Size: 9, Top: 9, Color: sheetMuted}),
		),
		col.New(4).Add(
			text.New("Generated "+now.Format("Jan 2, 2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 2, Color: sheetMuted}),
		),
	)
}

func sheetColumns() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2}))
	}
	return row.New(8).Add(
		h("Product", 3, align.Left),
		h("SKU", 2, align.Left),
		h("Qty", 1, align.Right),
		h("Min", 1, align.Right),
		h("Price", 2, align.Right),
		h("Location", 2, align.Left),
		h("Status", 1, align.Center),
	)
}

func sheetRows(items []Item) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, item := range items {
		status := "OK"
		statusProps := props.Text{Size: 8, Align: align.Center, Top: 1}
		if item.LowStock() {
			status = "LOW"
			statusProps.Style = fontstyle.Bold
			statusProps.Color = sheetAlert
		}
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(item.ProductID, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(item.SKU, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(item.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(item.MinStock), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New("$"+item.Price.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(item.Location, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(status, statusProps)),
		))
	}
	return rows
}

func sheetTotals(sum Summary) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: sheetMuted, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		)
	}
	return row.New(14).Add(
		cell("Products", strconv.Itoa(sum.Products)),
		cell("Low stock", strconv.Itoa(sum.LowStock)),
		cell("Total quantity", strconv.Itoa(sum.TotalQuantity)),
		cell("Total value", "$"+sum.TotalValue.StringFixed(2)),
	)
}
