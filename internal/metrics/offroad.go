package metrics

import (
	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

// OffRoad is the fraction of ticks the car spent outside the road edges.
type OffRoad struct {
	name       string
	road       road.Road
	violations int
	samples    int
}

func NewOffRoad(r road.Road) *OffRoad {
	return &OffRoad{
		name: "off_road",
		road: r,
	}
}

func (o *OffRoad) Name() string {
	return o.name
}

func (o *OffRoad) Observe(s sim.Sample) {
	o.samples++
	if !o.road.OnRoad(s.Position) {
		o.violations++
	}
}

func (o *OffRoad) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.violations) / float64(o.samples)
}

func (o *OffRoad) Reset() {
	o.violations = 0
	o.samples = 0
}
