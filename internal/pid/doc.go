// Package pid provides a single-input/single-output PID controller with
// optional anti-windup and output saturation.
//
// A [Controller] is configured once and then stepped once per control tick
// with the current error and the measured process input:
//
//	c := pid.New(0.85, 0.05, 0.02)
//	c.SetLimits(-7.5, 7.5)
//	c.SetFlags(pid.ResetAccOnZeroCross | pid.ClampOutput)
//	for {
//		corr := c.Update(pos-setpoint, pos)
//		pos -= corr
//	}
//
// # Behavior flags
//
//   - [ClampOutput]: saturate the correction into the output limits
//   - [ResetAccOnZeroCross]: Clegg integrator, zero the accumulator when the
//     error changes sign
//   - [ClampAccToOutputBounds]: bound the accumulator by the output limits
//
// # Timing
//
// The derivative term is a plain backward difference of the input with no
// division by elapsed time. Update must be called at a constant cadence for
// the derivative gain to have a physical meaning; the tick period is folded
// into Kd.
//
// # Thread Safety
//
// Controller instances are NOT safe for concurrent use. Confine each
// instance to a single goroutine or guard it with a mutex.
package pid
