package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pidroad/internal/sim"
)

func TestPowerSpectrumPeak(t *testing.T) {
	const n = 256
	const rate = 10.0
	data := make([]float64, n)
	for i := range data {
		// 8 cycles over the window, offset to check the mean is removed
		data[i] = 50 + 3*math.Sin(2*math.Pi*8*float64(i)/n)
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("expected mean removed, DC bin %f", ps[0])
	}

	freq, power := DominantFrequency(ps, n, rate)
	want := 8 * rate / n
	if math.Abs(freq-want) > 1e-9 {
		t.Errorf("expected dominant frequency %f, got %f", want, freq)
	}
	if power <= 0 {
		t.Error("expected positive peak power")
	}
	if p := Period(freq); math.Abs(p-n/(8*rate)) > 1e-9 {
		t.Errorf("expected period %f, got %f", n/(8*rate), p)
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	ps := PowerSpectrum([]float64{4, 4, 4, 4})
	if freq, _ := DominantFrequency(ps, 4, 10); freq != 0 {
		t.Errorf("constant signal should have no dominant frequency, got %f", freq)
	}
	if !math.IsInf(Period(0), 1) {
		t.Error("expected infinite period for zero frequency")
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func TestPhasePortrait(t *testing.T) {
	samples := []sim.Sample{
		{Error: -2, Correction: -1},
		{Error: 0, Correction: 0},
		{Error: 2, Correction: 1},
	}

	portrait := NewPhasePortrait(samples)
	if len(portrait.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(portrait.Points))
	}
	if portrait.Points[2].X != 2 || portrait.Points[2].Y != 1 {
		t.Errorf("unexpected point %+v", portrait.Points[2])
	}

	out := portrait.ASCII(20, 10)
	if strings.Count(out, "\n") != 10 {
		t.Errorf("expected 10 rows, got %d", strings.Count(out, "\n"))
	}
	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
	if NewPhasePortrait(nil).ASCII(20, 10) != "" {
		t.Error("expected empty plot for no samples")
	}
}
