package control

import "testing"

func TestNone(t *testing.T) {
	n := NewNone()
	if got := n.Step(12, 40).Correction; got != 0 {
		t.Errorf("expected zero correction, got %f", got)
	}
	if n.Accumulator() != 0 {
		t.Error("expected zero accumulator")
	}
}

func TestManual(t *testing.T) {
	m := NewManual()
	m.Nudge(1.5)
	m.Nudge(-0.5)

	if got := m.Step(0, 0).Correction; got != 1.0 {
		t.Errorf("expected queued correction 1, got %f", got)
	}
	if got := m.Step(0, 0).Correction; got != 0 {
		t.Errorf("expected queue drained, got %f", got)
	}
}
