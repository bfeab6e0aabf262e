package control

import "github.com/san-kum/pidroad/internal/pid"

// Manual applies whatever correction was last set, once. It lets a person
// steer the car from the live view.
type Manual struct {
	next float64
}

func NewManual() *Manual {
	return &Manual{}
}

// Nudge queues a correction for the next tick. Nudges add up until consumed.
func (m *Manual) Nudge(correction float64) {
	m.next += correction
}

// Step returns the queued correction and clears it.
func (m *Manual) Step(err, input float64) pid.Terms {
	c := m.next
	m.next = 0
	return pid.Terms{P: c, Correction: c}
}

func (m *Manual) Accumulator() float64 { return 0 }
