// Package road models a car that is pushed around a straight road by random
// gusts and steered back towards the middle lane marker by a controller.
//
// The road is one text row wide per tick: [Road.Render] draws the edges, the
// middle marker and the car, so printing successive rows gives a scrolling
// view of the car's path.
package road
