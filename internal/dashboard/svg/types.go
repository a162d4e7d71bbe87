// Package svg renders the dashboard charts as inline SVG so pages and PDF
// exports need no JavaScript.
package svg

// Palette is the slice color cycle shared by every chart.
var Palette = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899"}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	ShowDots    bool
	Frame       FrameOpts
}

// BarOpts customises the grouped bar renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	Frame        FrameOpts
}

// PieOpts customises the pie renderer.
type PieOpts struct {
	Title       string
	Description string
	Colors      []string
	ShowLegend  bool
}

// FrameOpts styles the grid and axes of cartesian charts.
type FrameOpts struct {
	AxisColor string
	GridColor string
	Padding   float64
	TickCount int
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 32.0
	DefaultTicks   = 5
)
