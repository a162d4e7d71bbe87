package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 200, []float64{4000, 3000, 5000}, []string{"Jan", "Feb", "Mar"}, LineOpts{
		Title:    "Monthly Sales",
		ShowDots: true,
	})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `aria-labelledby="monthly-sales-line-title monthly-sales-line-desc"`)
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, ">Feb</text>")
	assert.Contains(t, out, "5.0k")
}

func TestLineRejectsMismatchedLabels(t *testing.T) {
	_, err := Line(400, 200, []float64{1, 2}, []string{"a"}, LineOpts{})
	assert.Error(t, err)
	_, err = Line(400, 200, nil, nil, LineOpts{})
	assert.Error(t, err)
	_, err = Line(20, 20, []float64{1}, []string{"a"}, LineOpts{})
	assert.ErrorIs(t, err, errViewport)
}

func TestBarsRenderBothSeriesAndLegend(t *testing.T) {
	html, err := Bars(480, 240, []float64{120, 140}, []float64{150, 150}, []string{"Jan", "Feb"}, BarOpts{
		Title:        "Production",
		SeriesALabel: "Produced",
		SeriesBLabel: "Target",
	})
	require.NoError(t, err)
	out := string(html)
	// Four bars plus two legend swatches.
	assert.Equal(t, 6, strings.Count(out, "<rect"))
	assert.Contains(t, out, `aria-label="Target Feb"`)
	assert.Contains(t, out, ">Produced</text>")
}

func TestBarsValidateLengths(t *testing.T) {
	_, err := Bars(480, 240, []float64{1, 2}, nil, []string{"a"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(480, 240, nil, nil, []string{"a"}, BarOpts{})
	assert.Error(t, err)
}

func TestPie(t *testing.T) {
	html, err := Pie(200, []Slice{{"Main", 300}, {"North", 100}, {"Empty", 0}}, PieOpts{Title: "Stock", ShowLegend: true})
	require.NoError(t, err)
	out := string(html)
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "Main: 75%")
	assert.Contains(t, out, "North: 25%")
	assert.NotContains(t, out, "Empty")

	html, err = Pie(200, []Slice{{"All", 10}}, PieOpts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<circle")

	_, err = Pie(200, []Slice{{"None", 0}}, PieOpts{})
	assert.Error(t, err)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", formatTick(0))
	assert.Equal(t, "2.50", formatTick(2.5))
	assert.Equal(t, "1.5k", formatTick(1500))
	assert.Equal(t, "2.0M", formatTick(2_000_000))
}
