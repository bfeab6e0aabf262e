package telemetry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/pidroad/internal/sim"
)

func TestCollectorObservesTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	if err := c.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	c.OnTick(sim.Sample{Position: 55, Error: 4, Correction: 7.5, Accumulator: 4, Saturated: true, Reset: true})
	c.OnTick(sim.Sample{Position: 48, Error: -3, Correction: -2.5, Accumulator: 1})

	if got := testutil.ToFloat64(c.correction); got != -2.5 {
		t.Errorf("expected correction -2.5, got %f", got)
	}
	if got := testutil.ToFloat64(c.ticks); got != 2 {
		t.Errorf("expected 2 ticks, got %f", got)
	}
	if got := testutil.ToFloat64(c.saturated); got != 1 {
		t.Errorf("expected 1 saturated tick, got %f", got)
	}

	want := `
# HELP pidroad_resets_total Count of zero-crossing accumulator resets.
# TYPE pidroad_resets_total counter
pidroad_resets_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "pidroad_resets_total"); err != nil {
		t.Error(err)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	if err := c.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Error("expected duplicate registration error")
	}
}
