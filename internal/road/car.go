package road

import (
	"math"
	"math/rand"
)

const (
	DefaultGustThreshold = 0xF0
	DefaultDriftMax      = 5
)

// Disturbance pushes the car sideways. Most ticks it drifts by up to
// DriftMax-1 columns; when a random byte exceeds GustThreshold a gust moves
// it by up to GustMax-1 columns instead.
type Disturbance struct {
	GustThreshold int
	GustMax       int
	DriftMax      int
}

// DefaultDisturbance sizes gusts to half the screen width.
func DefaultDisturbance(r Road) Disturbance {
	return Disturbance{
		GustThreshold: DefaultGustThreshold,
		GustMax:       r.ScreenWidth / 2,
		DriftMax:      DefaultDriftMax,
	}
}

// Push returns pos moved by one random disturbance.
func (d Disturbance) Push(rng *rand.Rand, pos float64) float64 {
	r := rng.Intn(256)
	max := d.DriftMax
	if r > d.GustThreshold {
		max = d.GustMax
	}
	if max <= 0 {
		return pos
	}
	if r&1 == 1 {
		return pos + float64(rng.Intn(max))
	}
	return pos - float64(rng.Intn(max))
}

// Car is the controlled plant: a position on the road that is disturbed,
// measured against the middle marker and corrected.
type Car struct {
	road        Road
	disturbance Disturbance
	pos         float64
}

// NewCar places a car on the middle marker.
func NewCar(r Road, d Disturbance) *Car {
	return &Car{road: r, disturbance: d, pos: r.Setpoint()}
}

// Setpoint is the column the controller steers towards.
func (r Road) Setpoint() float64 { return float64(r.Middle()) }

func (c *Car) Road() Road { return c.road }

// Disturb keeps the car on screen and then pushes it randomly.
func (c *Car) Disturb(rng *rand.Rand) {
	c.pos = math.Max(0, math.Min(c.pos, float64(c.road.ScreenWidth)))
	c.pos = c.disturbance.Push(rng, c.pos)
}

// Measure returns the offset from the setpoint as the error and the raw
// position as the process input.
func (c *Car) Measure() (err, input float64) {
	return c.pos - c.road.Setpoint(), c.pos
}

// Apply steers the car by the correction.
func (c *Car) Apply(correction float64) {
	c.pos -= correction
}

func (c *Car) Position() float64 { return c.pos }

// Nudge shifts the car by delta columns, outside the random disturbance.
func (c *Car) Nudge(delta float64) { c.pos += delta }

// Column rounds the position to the nearest screen column.
func (c *Car) Column() int { return int(c.pos + 0.5) }

// Reset puts the car back on the middle marker.
func (c *Car) Reset() { c.pos = c.road.Setpoint() }
