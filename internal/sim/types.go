package sim

import (
	"math/rand"

	"github.com/san-kum/pidroad/internal/pid"
)

// Plant is the process under control. It is disturbed, measured and
// corrected once per tick.
type Plant interface {
	Disturb(rng *rand.Rand)
	Measure() (err, input float64)
	Apply(correction float64)
	Position() float64
}

type Controller interface {
	Step(err, input float64) pid.Terms
	Accumulator() float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Sample)
}

// Sample records one control tick, taken after the controller stepped and
// before the correction was applied.
type Sample struct {
	Tick        int
	Position    float64
	Error       float64
	Correction  float64
	Accumulator float64
	P, I, D     float64
	Reset       bool
	Saturated   bool
}

type Config struct {
	Ticks int
	Seed  int64
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Errors  []error
}

// Corrections extracts the correction series.
func (r *Result) Corrections() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Correction
	}
	return out
}

// Positions extracts the measured position series.
func (r *Result) Positions() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Position
	}
	return out
}
