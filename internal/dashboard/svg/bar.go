package svg

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart comparing two series, such as produced
// units against target.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", errors.New("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", errors.New("svg: labels required")
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", errors.New("svg: seriesA length must match labels")
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", errors.New("svg: seriesB length must match labels")
	}
	minVal, maxVal := bounds(seriesA, seriesB)
	f, err := newFrame(width, height, minVal, maxVal, opts.Frame)
	if err != nil {
		return "", err
	}
	colorA := fallback(opts.ColorA, Palette[0])
	colorB := fallback(opts.ColorB, Palette[1])
	labelA := fallback(opts.SeriesALabel, "Series A")
	labelB := fallback(opts.SeriesBLabel, "Series B")

	groupW := f.chartW / float64(len(labels))
	barW := groupW / 3

	var b strings.Builder
	f.open(&b, "bar", fallback(opts.Title, "Bar chart"), fallback(opts.Description, "Grouped bar comparison"))
	f.grid(&b)
	for i, label := range labels {
		x := f.padding + float64(i)*groupW
		if len(seriesA) > 0 {
			f.bar(&b, x+barW*0.3, barW, seriesA[i], colorA, labelA+" "+label)
		}
		if len(seriesB) > 0 {
			f.bar(&b, x+barW*1.4, barW, seriesB[i], colorB, labelB+" "+label)
		}
		f.label(&b, x+groupW/2, label)
	}

	legendX := f.padding
	legendY := math.Max(f.padding-12, 12)
	for _, entry := range []struct {
		on           bool
		color, label string
	}{{len(seriesA) > 0, colorA, labelA}, {len(seriesB) > 0, colorB, labelB}} {
		if !entry.on {
			continue
		}
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, entry.color)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`,
			legendX+14, legendY, f.axisColor, template.HTMLEscapeString(entry.label))
		legendX += 90
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// bar draws one bar between the zero line and v, clipped to the plot area.
func (f *frame) bar(b *strings.Builder, x, w, v float64, color, label string) {
	top := math.Max(math.Min(f.y(v), f.y(0)), f.padding)
	bottom := math.Min(math.Max(f.y(v), f.y(0)), f.bottom())
	h := math.Max(bottom-top, 0)
	fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s"></rect>`,
		x, top, w, h, color, template.HTMLEscapeString(label))
}
