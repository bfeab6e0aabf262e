package metrics

import (
	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

// Saturation is the fraction of ticks where the output clamp engaged.
type Saturation struct {
	saturated int
	samples   int
}

func NewSaturation() *Saturation { return &Saturation{} }

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(smp sim.Sample) {
	s.samples++
	if smp.Saturated {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Resets counts zero-crossing accumulator resets.
type Resets struct {
	count int
}

func NewResets() *Resets { return &Resets{} }

func (r *Resets) Name() string { return "resets" }

func (r *Resets) Observe(s sim.Sample) {
	if s.Reset {
		r.count++
	}
}

func (r *Resets) Value() float64 { return float64(r.count) }

func (r *Resets) Reset() { r.count = 0 }

// Default returns the metric set recorded for every run on the given road.
func Default(r road.Road) []sim.Metric {
	return []sim.Metric{
		NewTrackingError(),
		NewControlEffort(),
		NewSaturation(),
		NewResets(),
		NewOffRoad(r),
	}
}
