// Package analysis provides post-run tools for recorded control loops.
//
//   - [PowerSpectrum]: magnitude spectrum of a signal, e.g. the car position
//   - [DominantFrequency]: strongest oscillation in a spectrum
//   - [NewPhasePortrait]: error versus correction trajectory
//
// An underdamped loop shows up as a clear spectral peak near its
// oscillation frequency, and as a spiral in the phase portrait.
package analysis
