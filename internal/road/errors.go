package road

import "errors"

// ErrBadGeometry indicates road dimensions that do not fit the screen.
var ErrBadGeometry = errors.New("road: invalid geometry")
