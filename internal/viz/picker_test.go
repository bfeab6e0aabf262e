package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
)

func sendPicker(p Picker, msg tea.Msg) Picker {
	next, _ := p.Update(msg)
	return next.(Picker)
}

func TestPickerFlow(t *testing.T) {
	p := NewPicker(experiment.NewRegistry(), nil, "minimal")
	if !strings.Contains(p.View(), "PIDROAD") {
		t.Fatal("expected preset menu")
	}

	// presets are sorted, so "clegg" is second after "antiwindup"
	p = sendPicker(p, key("j"))
	p = sendPicker(p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.state != stateTune || p.cfg == nil {
		t.Fatalf("expected tune screen, got state %d", p.state)
	}
	if p.cfg.Controller.Kp != config.Presets["clegg"].Kp {
		t.Errorf("expected clegg gains, got %+v", p.cfg.Controller)
	}

	p = sendPicker(p, key("l"))
	if math.Abs(p.cfg.Controller.Kp-(config.Presets["clegg"].Kp+0.05)) > 1e-12 {
		t.Errorf("expected kp nudged up, got %f", p.cfg.Controller.Kp)
	}

	p = sendPicker(p, key("s"))
	if p.state != stateLive {
		t.Fatalf("expected live view, got state %d (err %v)", p.state, p.err)
	}
	if p.live.theme.Name != "minimal" {
		t.Errorf("expected minimal theme, got %s", p.live.theme.Name)
	}
}

func TestPickerEditRejectsInvalid(t *testing.T) {
	p := NewPicker(experiment.NewRegistry(), nil, "")
	p = sendPicker(p, tea.KeyMsg{Type: tea.KeyEnter})

	// move to "max" and type a value below min
	for i := 0; i < 4; i++ {
		p = sendPicker(p, key("j"))
	}
	p = sendPicker(p, tea.KeyMsg{Type: tea.KeyEnter})
	p.editBuf = ""
	for _, r := range "-20" {
		p = sendPicker(p, key(string(r)))
	}
	p = sendPicker(p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.cfg.Controller.Max != -20 {
		t.Fatalf("expected max -20, got %f", p.cfg.Controller.Max)
	}

	p = sendPicker(p, key("s"))
	if p.state != stateTune {
		t.Error("invalid limits should keep the tune screen")
	}
	if !errors.Is(p.err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", p.err)
	}
}
