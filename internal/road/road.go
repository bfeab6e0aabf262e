package road

import (
	"fmt"
	"strings"
)

const (
	DefaultScreenWidth = 101
	DefaultRoadWidth   = 80
	DefaultRoadBegin   = 11
)

// Road describes the visible screen and the road's position on it, in
// character columns.
type Road struct {
	ScreenWidth int
	RoadWidth   int
	RoadBegin   int
}

func Default() Road {
	return Road{
		ScreenWidth: DefaultScreenWidth,
		RoadWidth:   DefaultRoadWidth,
		RoadBegin:   DefaultRoadBegin,
	}
}

func (r Road) Middle() int { return r.RoadBegin + r.RoadWidth/2 }
func (r Road) End() int    { return r.RoadBegin + r.RoadWidth }

// Validate reports whether the road fits on the screen.
func (r Road) Validate() error {
	if r.ScreenWidth <= 0 {
		return fmt.Errorf("%w: screen width must be positive, got %d", ErrBadGeometry, r.ScreenWidth)
	}
	if r.RoadWidth <= 0 {
		return fmt.Errorf("%w: road width must be positive, got %d", ErrBadGeometry, r.RoadWidth)
	}
	if r.RoadBegin < 0 || r.End() >= r.ScreenWidth {
		return fmt.Errorf("%w: road [%d, %d] does not fit screen width %d", ErrBadGeometry, r.RoadBegin, r.End(), r.ScreenWidth)
	}
	return nil
}

// OnRoad reports whether a column lies between the road edges.
func (r Road) OnRoad(pos float64) bool {
	return pos >= float64(r.RoadBegin) && pos <= float64(r.End())
}

// Render draws one row with the car at column pos, followed by the
// position and accumulator readout.
func (r Road) Render(pos int, acc float64) string {
	var b strings.Builder
	b.Grow(r.ScreenWidth + 32)
	b.WriteString(r.Row(pos))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "pos = %d, acc=%.02f", pos, acc)
	return b.String()
}

// Row draws only the road and car, without the readout.
func (r Road) Row(pos int) string {
	row := make([]byte, r.ScreenWidth)
	for i := range row {
		switch i {
		case pos:
			row[i] = 'X'
		case r.RoadBegin, r.End(), r.Middle():
			row[i] = '|'
		default:
			row[i] = ' '
		}
	}
	return string(row)
}
