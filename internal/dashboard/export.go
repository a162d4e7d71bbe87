package dashboard

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV serialises the overview metrics and every series. Each block
// starts with its own header row and blocks are separated by a blank row.
func WriteCSV(w io.Writer, ov Overview) error {
	writer := csv.NewWriter(w)
	records := [][]string{
		{"Metric", "Value"},
		{"Total Revenue", ov.Metrics.TotalRevenue.StringFixed(2)},
		{"Total Orders", strconv.Itoa(ov.Metrics.TotalOrders)},
		{"Production Output", strconv.Itoa(ov.Metrics.ProductionOutput)},
		{"Inventory Items", strconv.Itoa(ov.Metrics.InventoryItems)},
		{},
		{"Month", "Sales", "Orders"},
	}
	for _, p := range ov.Sales {
		records = append(records, []string{p.Month, formatFloat(p.Sales), strconv.Itoa(p.Orders)})
	}
	records = append(records, []string{}, []string{"Month", "Produced", "Target"})
	for _, p := range ov.Production {
		records = append(records, []string{p.Month, formatFloat(p.Produced), formatFloat(p.Target)})
	}
	records = append(records, []string{}, []string{"Location", "Value"})
	for _, d := range ov.Distribution {
		records = append(records, []string{d.Name, formatFloat(d.Value)})
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
