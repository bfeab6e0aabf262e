// Package tui prints the scrolling road to a plain terminal.
package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

// Printer is a sim.Observer that writes one road row per tick and then
// waits out the rest of the frame. The accumulator shown on a row is the
// one the controller held before that tick's correction.
type Printer struct {
	w       io.Writer
	road    road.Road
	frame   time.Duration
	sleep   func(time.Duration)
	prevAcc float64
	err     error
}

func NewPrinter(w io.Writer, r road.Road, fps int) *Printer {
	p := &Printer{w: w, road: r, sleep: time.Sleep}
	if fps > 0 {
		p.frame = time.Second / time.Duration(fps)
	}
	return p
}

// NoDelay turns off frame pacing.
func (p *Printer) NoDelay() *Printer {
	p.frame = 0
	return p
}

func (p *Printer) OnTick(s sim.Sample) {
	if p.err != nil {
		return
	}
	col := int(s.Position + 0.5)
	if _, err := fmt.Fprintln(p.w, p.road.Render(col, p.prevAcc)); err != nil {
		p.err = err
		return
	}
	p.prevAcc = s.Accumulator
	if p.frame > 0 {
		p.sleep(p.frame)
	}
}

// Err returns the first write error, after which the printer stays silent.
func (p *Printer) Err() error { return p.err }
