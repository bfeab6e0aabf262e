package control

import "github.com/san-kum/pidroad/internal/pid"

// None leaves the plant to the disturbance.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Step(err, input float64) pid.Terms {
	return pid.Terms{}
}

func (n *None) Accumulator() float64 { return 0 }
