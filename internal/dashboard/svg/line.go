package svg

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Line renders a single-series line chart with a filled area underneath.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", errors.New("svg: series required")
	}
	if len(series) != len(labels) {
		return "", errors.New("svg: labels length must match series")
	}
	minVal, maxVal := bounds(series)
	f, err := newFrame(width, height, minVal, maxVal, opts.Frame)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.StrokeColor, Palette[0])
	fill := fallback(opts.FillColor, "rgba(59,130,246,0.12)")

	xs := make([]float64, len(series))
	for i := range series {
		if len(series) == 1 {
			xs[i] = f.padding + f.chartW/2
			continue
		}
		xs[i] = f.padding + float64(i)*f.chartW/float64(len(series)-1)
	}

	var path strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xs[i], f.y(v))
	}
	line := strings.TrimSpace(path.String())

	var b strings.Builder
	f.open(&b, "line", fallback(opts.Title, "Line chart"), fallback(opts.Description, "Trend data"))
	f.grid(&b)
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`,
		line, xs[len(xs)-1], f.y(0), xs[0], f.y(0), fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, line, stroke)
	for i, v := range series {
		if opts.ShowDots {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %s</title></circle>`,
				xs[i], f.y(v), stroke, template.HTMLEscapeString(labels[i]), formatTick(v))
		}
		f.label(&b, xs[i], labels[i])
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
