package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/cosmosim/internal/result"
)

// ErrTooFewPoints indicates a trajectory with fewer than two records.
var ErrTooFewPoints = errors.New("export: need at least two records")

type point struct{ X, Y float64 }

// TrajectorySVG draws yField against xField as a single SVG path.
func TrajectorySVG(records []result.SimulationResult, xField, yField string, width, height int, strokeColor string) (string, error) {
	if len(records) < 2 {
		return "", ErrTooFewPoints
	}

	points := make([]point, len(records))
	for i, r := range records {
		x, ok := r.Field(xField)
		if !ok {
			return "", fmt.Errorf("export: unknown field %q", xField)
		}
		y, ok := r.Field(yField)
		if !ok {
			return "", fmt.Errorf("export: unknown field %q", yField)
		}
		points[i] = point{x, y}
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<title>%s vs %s</title>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, yField, xField, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String(), nil
}
