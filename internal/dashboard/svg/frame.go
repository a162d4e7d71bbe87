package svg

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

var errViewport = errors.New("svg: viewport too small")

// frame is the plotting area of a cartesian chart and its value scale.
type frame struct {
	width, height int
	padding       float64
	chartW        float64
	chartH        float64
	minVal        float64
	maxVal        float64
	ticks         int
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, minVal, maxVal float64, opts FrameOpts) (*frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := &frame{
		width:     width,
		height:    height,
		padding:   opts.Padding,
		ticks:     opts.TickCount,
		axisColor: fallback(opts.AxisColor, "#475569"),
		gridColor: fallback(opts.GridColor, "#e2e8f0"),
	}
	if f.padding <= 0 {
		f.padding = DefaultPadding
	}
	if f.ticks <= 0 {
		f.ticks = DefaultTicks
	}
	f.chartW = float64(width) - 2*f.padding
	f.chartH = float64(height) - 2*f.padding
	if f.chartW <= 0 || f.chartH <= 0 {
		return nil, errViewport
	}
	f.minVal = math.Min(minVal, 0)
	f.maxVal = math.Max(maxVal, 0)
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

func (f *frame) bottom() float64 { return f.padding + f.chartH }

// y maps a value onto the vertical pixel axis.
func (f *frame) y(v float64) float64 {
	return f.bottom() - (v-f.minVal)*f.chartH/(f.maxVal-f.minVal)
}

// open writes the svg element with its accessible title and description.
func (f *frame) open(b *strings.Builder, kind, title, desc string) {
	openSVG(b, f.width, f.height, kind, title, desc)
}

// grid draws dashed value lines with tick labels, then both axes.
func (f *frame) grid(b *strings.Builder) {
	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		y := f.bottom() - ratio*f.chartH
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`,
			f.padding, y, f.padding+f.chartW, y, f.gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`,
			f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-label="Axes">`, f.axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.y(0), f.padding+f.chartW, f.y(0))
	b.WriteString("</g>")
}

// label writes an x-axis label centred on x.
func (f *frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
		x, f.bottom()+14, f.axisColor, template.HTMLEscapeString(text))
}

func openSVG(b *strings.Builder, width, height int, kind, title, desc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(desc))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series ...[]float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
