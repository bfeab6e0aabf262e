package pid

import "errors"

var (
	// ErrUnknownFlag indicates a flag name that does not map to a behavior bit.
	ErrUnknownFlag = errors.New("pid: unknown flag")

	// ErrUnknownParam indicates a tuning parameter the controller does not have.
	ErrUnknownParam = errors.New("pid: unknown parameter")
)
