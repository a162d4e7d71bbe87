package view

import (
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/companyhub/internal/shared"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":  FormatDate,
		"shortDate":   ShortDate,
		"money":       Money,
		"number":      Number,
		"humanize":    Humanize,
		"statusClass": StatusClass,
		"percent":     Percent,
		"join":        strings.Join,
		"lower":       strings.ToLower,
	}
}

// FormatDate renders a timestamp for tables.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

// ParseDate accepts the date shapes the backend emits.
func ParseDate(raw string) (time.Time, bool) {
	return shared.ParseTimestamp(raw)
}

// ShortDate renders a backend date string as "Jan 2, 2006", or returns it
// unchanged when it cannot be parsed.
func ShortDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format("Jan 2, 2006")
}

// Money formats an amount with grouping and two decimals.
func Money(v any) string {
	switch amount := v.(type) {
	case decimal.Decimal:
		f, _ := amount.Round(2).Float64()
		return printer.Sprintf("$%.2f", f)
	case float64:
		return printer.Sprintf("$%.2f", amount)
	case int:
		return printer.Sprintf("$%.2f", float64(amount))
	default:
		return printer.Sprintf("$%.2f", 0.0)
	}
}

// Number formats a count with grouping separators.
func Number(v any) string {
	switch n := v.(type) {
	case int:
		return printer.Sprintf("%d", n)
	case int64:
		return printer.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return printer.Sprintf("%d", int64(n))
		}
		return printer.Sprintf("%.2f", n)
	case decimal.Decimal:
		return Number(n.InexactFloat64())
	default:
		return "0"
	}
}

// Humanize turns identifiers like "in-progress" or "raw_materials" into titles.
func Humanize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return titler.String(s)
}

// StatusClass maps a status or severity to a badge class.
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case "completed", "operational", "active", "resolved", "success":
		return "badge badge-ok"
	case "processing", "in-progress", "acknowledged", "maintenance", "medium", "info":
		return "badge badge-info"
	case "pending", "planned", "new", "low":
		return "badge badge-muted"
	case "cancelled", "stopped", "error", "inactive", "high", "critical":
		return "badge badge-danger"
	default:
		return "badge"
	}
}

// Percent renders part/whole as a whole percentage.
func Percent(part, whole float64) string {
	if whole == 0 {
		return "0%"
	}
	return printer.Sprintf("%.0f%%", part/whole*100)
}
