package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cosmosim/internal/result"
)

// RenderRecord renders one labelled line with all five fields in order.
func RenderRecord(r result.SimulationResult) string {
	var b strings.Builder
	for i, v := range r.Fields() {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(MetricLabel.Render(result.FieldNames[i] + ":"))
		b.WriteString(" ")
		b.WriteString(MetricValue.Render(result.FormatValue(v)))
	}
	return b.String()
}

// Plot draws one field against record index.
func Plot(results []result.SimulationResult, field string, height, width int) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no results to plot")
	}

	data := make([]float64, len(results))
	for i, r := range results {
		v, ok := r.Field(field)
		if !ok {
			return "", fmt.Errorf("unknown field: %s (available: %s)", field, strings.Join(result.FieldNames[:], ", "))
		}
		data[i] = v
	}

	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = append(data, data[0])
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s vs record", field)),
	), nil
}
