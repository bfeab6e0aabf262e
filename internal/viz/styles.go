package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	roadPanel lipgloss.Style
	stats     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	active    lipgloss.Style
	road      lipgloss.Style
	car       lipgloss.Style
	graph     lipgloss.Style
	help      lipgloss.Style
	good      lipgloss.Style
	warning   lipgloss.Style
	bad       lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		roadPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(40),
		header:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		active:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		road:    lipgloss.NewStyle().Foreground(t.Road),
		car:     lipgloss.NewStyle().Foreground(t.Car).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Car).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		good:    lipgloss.NewStyle().Foreground(t.Good).Bold(true),
		warning: lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		bad:     lipgloss.NewStyle().Foreground(t.Bad).Bold(true),
	}
}

// colorRow paints the car and the road markers of a plain road row.
func (s styles) colorRow(row string) string {
	var b strings.Builder
	for _, c := range row {
		switch c {
		case 'X':
			b.WriteString(s.car.Render("X"))
		case '|':
			b.WriteString(s.road.Render("|"))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ratioBar draws a fraction in [0, 1] as a bar, colored by how close it is
// to full.
func (s styles) ratioBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case frac > 0.5:
		return s.bad.Render(bar)
	case frac > 0.2:
		return s.warning.Render(bar)
	}
	return s.good.Render(bar)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders the last width values as block characters.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return b.String()
}
