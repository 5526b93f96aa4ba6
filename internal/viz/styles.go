package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorGood   = lipgloss.Color("#00ff88")
	colorWarn   = lipgloss.Color("#ffaa00")
	colorBad    = lipgloss.Color("#ff4444")
	colorAccent = lipgloss.Color("#00ccff")
	colorMuted  = lipgloss.Color("#666688")
	colorLabel  = lipgloss.Color("#888899")
)

var (
	Subtle      = lipgloss.NewStyle().Foreground(colorMuted)
	KeyHint     = Subtle.Italic(true)
	MetricLabel = lipgloss.NewStyle().Foreground(colorLabel)
	MetricValue = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(colorGood)
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(colorWarn)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBad)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	// Sparkline bands, low to high.
	sparkBands = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(colorBad),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")),
		lipgloss.NewStyle().Foreground(colorGood),
	}
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SparklineChart draws at most width samples of values, scaled to their
// own range.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	stride := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*stride < len(values); i++ {
		norm := (values[i*stride] - lo) / span
		r := sparkRunes[min(int(norm*float64(len(sparkRunes)-1)), len(sparkRunes)-1)]
		band := sparkBands[min(int(norm*float64(len(sparkBands))), len(sparkBands)-1)]
		b.WriteString(band.Render(string(r)))
	}
	return b.String()
}

// Separator is a muted rule of the given width.
func Separator(width int) string {
	return Subtle.Render(strings.Repeat("─", max(width, 0)))
}
