// Package control provides baseline controllers that satisfy
// [sim.Controller] alongside the PID controller in package pid.
//
//   - [None]: open-loop baseline, never corrects
//   - [Manual]: applies a correction set from outside, e.g. by a keyboard
package control
