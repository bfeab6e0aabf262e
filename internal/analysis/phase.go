package analysis

import (
	"strings"

	"github.com/san-kum/pidroad/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait plots the error of every tick against the correction the
// controller answered with.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []Point
}

func NewPhasePortrait(samples []sim.Sample) *PhasePortrait {
	portrait := &PhasePortrait{
		XLabel: "error",
		YLabel: "correction",
		Points: make([]Point, len(samples)),
	}
	for i, s := range samples {
		portrait.Points[i] = Point{X: s.Error, Y: s.Correction}
	}
	return portrait
}

type span struct{ lo, hi float64 }

// padded widens s by 10% on both sides; a flat span becomes one unit wide.
func (s span) padded() span {
	w := s.hi - s.lo
	if w == 0 {
		w = 1
	}
	return span{s.lo - w*0.1, s.hi + w*0.1}
}

func (s span) scale(v float64, cells int) int {
	return int((v - s.lo) / (s.hi - s.lo) * float64(cells-1))
}

// ASCII renders the portrait on a width x height character grid with axes
// drawn through zero when they are in view.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := span{p.Points[0].X, p.Points[0].X}
	ys := span{p.Points[0].Y, p.Points[0].Y}
	for _, pt := range p.Points[1:] {
		xs.lo, xs.hi = min(xs.lo, pt.X), max(xs.hi, pt.X)
		ys.lo, ys.hi = min(ys.lo, pt.Y), max(ys.hi, pt.Y)
	}
	xs, ys = xs.padded(), ys.padded()

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	put := func(row, col int, c rune) {
		if row >= 0 && row < height && col >= 0 && col < width && grid[row][col] == ' ' {
			grid[row][col] = c
		}
	}

	for _, pt := range p.Points {
		put(height-1-ys.scale(pt.Y, height), xs.scale(pt.X, width), '•')
	}
	if xs.lo <= 0 && xs.hi >= 0 {
		col := xs.scale(0, width)
		for row := 0; row < height; row++ {
			put(row, col, '│')
		}
	}
	if ys.lo <= 0 && ys.hi >= 0 {
		row := height - 1 - ys.scale(0, height)
		for col := 0; col < width; col++ {
			put(row, col, '─')
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
