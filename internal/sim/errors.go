package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")

	// ErrDiverged indicates the plant position became NaN or Inf.
	ErrDiverged = errors.New("sim: plant diverged (NaN or Inf position)")
)

// SimulationError wraps an error with tick context.
type SimulationError struct {
	Tick     int
	Position float64
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (pos=%.4f): %v", e.Tick, e.Position, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
