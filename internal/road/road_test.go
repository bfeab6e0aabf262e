package road

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestDefaultGeometry(t *testing.T) {
	r := Default()

	if r.Middle() != 51 {
		t.Errorf("expected middle 51, got %d", r.Middle())
	}
	if r.End() != 91 {
		t.Errorf("expected end 91, got %d", r.End())
	}
	if err := r.Validate(); err != nil {
		t.Errorf("default road should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		road Road
	}{
		{"zero screen", Road{ScreenWidth: 0, RoadWidth: 10, RoadBegin: 0}},
		{"zero road", Road{ScreenWidth: 50, RoadWidth: 0, RoadBegin: 0}},
		{"negative begin", Road{ScreenWidth: 50, RoadWidth: 10, RoadBegin: -1}},
		{"overflow", Road{ScreenWidth: 50, RoadWidth: 45, RoadBegin: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.road.Validate(); !errors.Is(err, ErrBadGeometry) {
				t.Errorf("expected ErrBadGeometry, got %v", err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	r := Road{ScreenWidth: 11, RoadWidth: 6, RoadBegin: 2}

	got := r.Render(3, 1.5)
	want := "  |X |  |   pos = 3, acc=1.50"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderCarOverMarker(t *testing.T) {
	r := Default()
	row := r.Row(r.Middle())

	if row[r.Middle()] != 'X' {
		t.Errorf("car should cover the middle marker, got %q", row[r.Middle()])
	}
	if strings.Count(row, "|") != 2 {
		t.Errorf("expected two visible markers, got %d", strings.Count(row, "|"))
	}
	if len(row) != r.ScreenWidth {
		t.Errorf("expected row width %d, got %d", r.ScreenWidth, len(row))
	}
}

func TestRenderOffScreen(t *testing.T) {
	r := Default()
	row := r.Row(-4)
	if strings.ContainsRune(row, 'X') {
		t.Error("off-screen car should not be drawn")
	}
}

func TestCarMeasureAndApply(t *testing.T) {
	c := NewCar(Default(), Disturbance{})

	e, in := c.Measure()
	if e != 0 || in != 51 {
		t.Errorf("expected (0, 51), got (%f, %f)", e, in)
	}

	c.Apply(-4)
	e, in = c.Measure()
	if e != 4 || in != 55 {
		t.Errorf("expected (4, 55), got (%f, %f)", e, in)
	}

	c.Reset()
	if c.Position() != 51 {
		t.Errorf("expected reset to 51, got %f", c.Position())
	}
}

func TestCarNudge(t *testing.T) {
	c := NewCar(Default(), Disturbance{})

	c.Nudge(-2)
	c.Nudge(0.5)
	if c.Position() != 49.5 {
		t.Errorf("expected 49.5, got %f", c.Position())
	}
}

func TestDisturbClampsToScreen(t *testing.T) {
	c := NewCar(Default(), Disturbance{})
	rng := rand.New(rand.NewSource(1))

	c.Apply(500)
	c.Disturb(rng)
	if c.Position() != 0 {
		t.Errorf("expected clamp to 0, got %f", c.Position())
	}

	c.Apply(-500)
	c.Disturb(rng)
	if c.Position() != 101 {
		t.Errorf("expected clamp to 101, got %f", c.Position())
	}
}

func TestDisturbanceBounds(t *testing.T) {
	d := DefaultDisturbance(Default())
	rng := rand.New(rand.NewSource(42))

	gusts := 0
	for i := 0; i < 10000; i++ {
		delta := d.Push(rng, 0)
		if delta <= -float64(d.GustMax) || delta >= float64(d.GustMax) {
			t.Fatalf("push %f outside gust range", delta)
		}
		if delta <= -float64(d.DriftMax) || delta >= float64(d.DriftMax) {
			gusts++
		}
	}
	if gusts == 0 {
		t.Error("expected at least one gust in 10000 pushes")
	}
}

func TestDisturbanceDeterministic(t *testing.T) {
	d := DefaultDisturbance(Default())
	a := rand.New(rand.NewSource(9))
	b := rand.New(rand.NewSource(9))

	for i := 0; i < 100; i++ {
		if d.Push(a, 10) != d.Push(b, 10) {
			t.Fatal("same seed should give the same pushes")
		}
	}
}
