package pid

import (
	"fmt"
	"math"
)

// Controller is a PID controller with a running error accumulator and a
// backward-difference derivative on the measured input.
type Controller struct {
	kp, ki, kd float64

	accumulator float64
	lastInput   float64
	lastError   float64

	outputMin, outputMax float64
	flags                Flags
}

// Terms is the breakdown of a single update.
type Terms struct {
	P, I, D    float64
	Correction float64
	// Reset is set when the zero-crossing reset fired this tick.
	Reset bool
	// Saturated is set when the output clamp changed the correction.
	Saturated bool
}

func New(kp, ki, kd float64) *Controller {
	c := &Controller{}
	c.Init(kp, ki, kd)
	return c
}

// Init sets the gains and clears all running state. Flags go back to
// DefaultBehavior and the limits are unbounded.
func (c *Controller) Init(kp, ki, kd float64) {
	c.kp = kp
	c.ki = ki
	c.kd = kd
	c.accumulator = 0
	c.lastInput = 0
	c.lastError = 0
	c.outputMin = math.Inf(-1)
	c.outputMax = math.Inf(1)
	c.flags = DefaultBehavior
}

// SetFlags replaces the behavior flags.
func (c *Controller) SetFlags(f Flags) {
	c.flags = f
}

func (c *Controller) Flags() Flags {
	return c.flags
}

// SetLimits sets the output saturation bounds. It panics unless min < max.
func (c *Controller) SetLimits(min, max float64) {
	if !(min < max) {
		panic(fmt.Sprintf("pid: invalid limits: min %v must be below max %v", min, max))
	}
	c.outputMin = min
	c.outputMax = max
}

func (c *Controller) Limits() (min, max float64) {
	return c.outputMin, c.outputMax
}

func (c *Controller) Gains() (kp, ki, kd float64) {
	return c.kp, c.ki, c.kd
}

// Accumulator returns the running error sum.
func (c *Controller) Accumulator() float64 {
	return c.accumulator
}

// LastInput returns the input seen by the previous update.
func (c *Controller) LastInput() float64 {
	return c.lastInput
}

// Update runs one control tick and returns the correction.
func (c *Controller) Update(err, input float64) float64 {
	return c.Step(err, input).Correction
}

// Step runs one control tick and reports the individual terms.
func (c *Controller) Step(err, input float64) Terms {
	var t Terms

	// the crossing is judged against the previous tick's error, so the
	// reset lands before this tick's error is accumulated
	if c.flags.Has(ResetAccOnZeroCross) && crossed(c.lastError, err) {
		c.accumulator = 0
		t.Reset = true
	}
	c.lastError = err

	c.accumulator += err
	if c.flags.Has(ClampAccToOutputBounds) {
		c.accumulator = clamp(c.accumulator, c.outputMin, c.outputMax)
	}

	t.P = c.kp * err
	t.I = c.ki * c.accumulator
	t.D = c.kd * (c.lastInput - input)
	c.lastInput = input

	t.Correction = t.P + t.I + t.D
	if c.flags.Has(ClampOutput) {
		clamped := clamp(t.Correction, c.outputMin, c.outputMax)
		// NaN passes through unclamped and is not a saturation
		t.Saturated = clamped < t.Correction || clamped > t.Correction
		t.Correction = clamped
	}
	return t
}

// Reset clears the accumulator and the derivative and crossing memory.
// Gains, limits and flags are kept.
func (c *Controller) Reset() {
	c.accumulator = 0
	c.lastInput = 0
	c.lastError = 0
}

// GetParams returns tunable parameters for live adjustment
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"kp": c.kp,
		"ki": c.ki,
		"kd": c.kd,
	}
}

// SetParam adjusts a single gain by name.
func (c *Controller) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		c.kp = value
	case "ki":
		c.ki = value
	case "kd":
		c.kd = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// crossed treats zero as belonging to either side, so two consecutive
// zero errors are not a crossing.
func crossed(last, err float64) bool {
	return (err > 0 && last <= 0) || (err < 0 && last >= 0)
}

func clamp(v, min, max float64) float64 {
	if v > max {
		return max
	}
	if v < min {
		return min
	}
	return v
}
