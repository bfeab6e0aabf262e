// Package viz is the interactive terminal view of the road demo, built on
// Bubble Tea.
//
//   - [Model]: drives one experiment tick by tick, scrolling the road on the
//     left and showing the controller's terms, gains and flags on the right
//   - [Picker]: preset menu and tuning screen that hands over to a [Model]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset car, gains and flags
//	Tab   - Select gain
//	Up/K  - Increase selected gain by 5%
//	Down/J- Decrease selected gain by 5%
//	1/2/3 - Toggle clamp_output, reset_acc_on_zero_cross, clamp_acc_to_output_bounds
//	Left/Right - Steer, when the controller kind is manual
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
