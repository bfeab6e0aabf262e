// Package export renders saved runs as standalone SVG images.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

const (
	// pixels per screen column and per tick
	colScale = 6.0
	rowScale = 3.0
)

// RoadSVG draws the car's path down the road, the same picture the scrolling
// terminal view leaves behind: columns across, ticks downwards. Saturated
// ticks are marked in red and zero-crossing resets in yellow.
func RoadSVG(w io.Writer, r road.Road, samples []sim.Sample) error {
	if len(samples) < 2 {
		return fmt.Errorf("export: need at least 2 samples, got %d", len(samples))
	}

	width := float64(r.ScreenWidth) * colScale
	height := float64(len(samples)) * rowScale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	sb.WriteString(`<g stroke="#888899" stroke-width="1">` + "\n")
	for _, col := range []int{r.RoadBegin, r.Middle(), r.End()} {
		x := colX(float64(col))
		dash := ""
		if col == r.Middle() {
			dash = ` stroke-dasharray="6,6"`
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="0" x2="%.1f" y2="%.0f"%s/>`+"\n", x, x, height, dash)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<path fill="none" stroke="#00ffff" stroke-width="1.5" d="M`)
	for i, s := range samples {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", colX(s.Position), rowY(i))
	}
	sb.WriteString(`"/>` + "\n")

	for i, s := range samples {
		switch {
		case s.Saturated:
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2" fill="#ff4444"/>`+"\n", colX(s.Position), rowY(i))
		case s.Reset:
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2" fill="#ffcc00"/>`+"\n", colX(s.Position), rowY(i))
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func colX(pos float64) float64 { return pos*colScale + colScale/2 }
func rowY(tick int) float64    { return float64(tick)*rowScale + rowScale/2 }
