package metrics

import (
	"math"

	"github.com/san-kum/pidroad/internal/sim"
)

// meanAbs averages the magnitude of one sample field over a run.
type meanAbs struct {
	name    string
	field   func(sim.Sample) float64
	sum     float64
	samples int
}

func (m *meanAbs) Name() string { return m.name }

func (m *meanAbs) Observe(s sim.Sample) {
	m.sum += math.Abs(m.field(s))
	m.samples++
}

func (m *meanAbs) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *meanAbs) Reset() {
	m.sum = 0
	m.samples = 0
}

// ControlEffort is the mean absolute correction.
type ControlEffort struct{ meanAbs }

func NewControlEffort() *ControlEffort {
	return &ControlEffort{meanAbs{
		name:  "control_effort",
		field: func(s sim.Sample) float64 { return s.Correction },
	}}
}

// TrackingError is the mean absolute distance from the setpoint.
type TrackingError struct{ meanAbs }

func NewTrackingError() *TrackingError {
	return &TrackingError{meanAbs{
		name:  "tracking_error",
		field: func(s sim.Sample) float64 { return s.Error },
	}}
}
