package pid

import (
	"fmt"
	"strings"
)

// Flags selects optional controller behavior. Bits combine freely.
type Flags uint8

const (
	DefaultBehavior Flags = 0

	// ClampOutput clamps the correction to the output limits.
	ClampOutput Flags = 1 << 0
	// ResetAccOnZeroCross resets the accumulator when the error changes sign.
	ResetAccOnZeroCross Flags = 1 << 1
	// ClampAccToOutputBounds limits the accumulator to the output limits.
	ClampAccToOutputBounds Flags = 1 << 2
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{ClampOutput, "clamp_output"},
	{ResetAccOnZeroCross, "reset_acc_on_zero_cross"},
	{ClampAccToOutputBounds, "clamp_acc_to_output_bounds"},
}

// Has reports whether every bit of other is set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Names returns the names of the set bits in declaration order.
func (f Flags) Names() []string {
	names := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flags) String() string {
	if f == DefaultBehavior {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// FlagNames lists every known flag name.
func FlagNames() []string {
	names := make([]string, len(flagNames))
	for i, fn := range flagNames {
		names[i] = fn.name
	}
	return names
}

// ParseFlags turns flag names into a bit set. "none" and "default" are
// accepted and contribute nothing.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "", "none", "default":
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return DefaultBehavior, fmt.Errorf("%w: %q", ErrUnknownFlag, raw)
		}
	}
	return f, nil
}
