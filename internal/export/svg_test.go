package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

func TestRoadSVG(t *testing.T) {
	samples := []sim.Sample{
		{Tick: 0, Position: 51},
		{Tick: 1, Position: 60, Saturated: true},
		{Tick: 2, Position: 48, Reset: true},
	}

	var buf bytes.Buffer
	if err := RoadSVG(&buf, road.Default(), samples); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("expected a complete SVG document")
	}
	if n := strings.Count(out, "<line"); n != 3 {
		t.Errorf("expected 3 road markers, got %d", n)
	}
	if !strings.Contains(out, "M309.0,1.5 L363.0,4.5 L291.0,7.5") {
		t.Errorf("unexpected path in %s", out)
	}
	if !strings.Contains(out, `fill="#ff4444"`) || !strings.Contains(out, `fill="#ffcc00"`) {
		t.Error("expected saturation and reset markers")
	}
}

func TestRoadSVGTooShort(t *testing.T) {
	if err := RoadSVG(&bytes.Buffer{}, road.Default(), []sim.Sample{{}}); err == nil {
		t.Error("expected error for a single sample")
	}
}
