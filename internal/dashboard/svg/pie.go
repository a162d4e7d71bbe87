package svg

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Slice is one labelled pie segment.
type Slice struct {
	Label string
	Value float64
}

// Pie renders slices as a pie chart. Non-positive slices are skipped.
func Pie(size int, slices []Slice, opts PieOpts) (template.HTML, error) {
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total <= 0 {
		return "", errors.New("svg: pie needs a positive total")
	}
	if size <= 0 {
		size = DefaultHeight
	}
	colors := opts.Colors
	if len(colors) == 0 {
		colors = Palette
	}
	width := size
	if opts.ShowLegend {
		width = size + 180
	}
	r := float64(size)/2 - 8
	cx, cy := float64(size)/2, float64(size)/2

	var b strings.Builder
	openSVG(&b, width, size, "pie", fallback(opts.Title, "Pie chart"), fallback(opts.Description, "Share of total"))
	angle := -math.Pi / 2
	n := 0
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		color := colors[n%len(colors)]
		share := s.Value / total
		label := fmt.Sprintf("%s: %.0f%%", s.Label, share*100)
		if almostEqual(share, 1) {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`,
				cx, cy, r, color, template.HTMLEscapeString(label))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			fmt.Fprintf(&b, `<path d="M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z" fill="%s" stroke="#fff" stroke-width="1"><title>%s</title></path>`,
				cx, cy, cx+r*math.Cos(angle), cy+r*math.Sin(angle), r, r, large,
				cx+r*math.Cos(end), cy+r*math.Sin(end), color, template.HTMLEscapeString(label))
			angle = end
		}
		if opts.ShowLegend {
			y := 16 + float64(n)*18
			fmt.Fprintf(&b, `<rect x="%d" y="%.2f" width="10" height="10" fill="%s"></rect>`, size+8, y-9, color)
			fmt.Fprintf(&b, `<text x="%d" y="%.2f" fill="#475569" font-size="11">%s</text>`, size+24, y, template.HTMLEscapeString(label))
		}
		n++
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
