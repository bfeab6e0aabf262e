package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/sim"
)

var presetInfo = map[string]string{
	"demo":         "overshooting classic",
	"proportional": "P only, clamped",
	"unclamped":    "no flags at all",
	"clegg":        "zero-cross reset",
	"antiwindup":   "accumulator clamp",
	"sluggish":     "low gains, tight limit",
	"open_loop":    "no controller",
}

const (
	statePresets = iota
	stateTune
	stateLive
)

// tunable fields of the config screen, in display order
var tuneFields = []string{"kp", "ki", "kd", "min", "max", "seed"}

// Picker lets the user choose a preset, adjust it and then drive it live.
type Picker struct {
	state       int
	cursor      int
	presets     []string
	cfg         *config.Config
	fieldCursor int
	editing     bool
	editBuf     string
	err         error
	theme       string
	registry    *experiment.Registry
	observers   []sim.Observer
	log         *zap.Logger
	live        Model
}

func NewPicker(registry *experiment.Registry, log *zap.Logger, theme string, observers ...sim.Observer) Picker {
	return Picker{
		presets:   config.ListPresets(),
		registry:  registry,
		observers: observers,
		log:       log,
		theme:     theme,
	}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch p.state {
		case statePresets:
			return p.presetKey(key)
		case stateTune:
			return p.tuneKey(key)
		}
	}
	return p, nil
}

func (p Picker) presetKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.cfg = config.GetPreset(p.presets[p.cursor])
		p.state, p.fieldCursor, p.err = stateTune, 0, nil
	}
	return p, nil
}

func (p Picker) tuneKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	if p.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(p.editBuf, 64); err == nil {
				p.setField(tuneFields[p.fieldCursor], v)
			}
			p.editing, p.editBuf = false, ""
		case "esc":
			p.editing, p.editBuf = false, ""
		case "backspace":
			if len(p.editBuf) > 0 {
				p.editBuf = p.editBuf[:len(p.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				p.editBuf += s
			}
		}
		return p, nil
	}

	switch msg.String() {
	case "q", "esc":
		p.state = statePresets
	case "up", "k":
		if p.fieldCursor > 0 {
			p.fieldCursor--
		}
	case "down", "j":
		if p.fieldCursor < len(tuneFields)-1 {
			p.fieldCursor++
		}
	case "enter", " ":
		p.editing = true
		p.editBuf = strconv.FormatFloat(p.field(tuneFields[p.fieldCursor]), 'f', -1, 64)
	case "left", "h":
		name := tuneFields[p.fieldCursor]
		p.setField(name, p.field(name)-p.stepFor(name))
	case "right", "l":
		name := tuneFields[p.fieldCursor]
		p.setField(name, p.field(name)+p.stepFor(name))
	case "s":
		return p.start()
	}
	return p, nil
}

func (p Picker) stepFor(name string) float64 {
	switch name {
	case "kp":
		return 0.05
	case "ki", "kd":
		return 0.01
	case "seed":
		return 1
	}
	return 0.5
}

func (p Picker) field(name string) float64 {
	c := p.cfg.Controller
	switch name {
	case "kp":
		return c.Kp
	case "ki":
		return c.Ki
	case "kd":
		return c.Kd
	case "min":
		return c.Min
	case "max":
		return c.Max
	case "seed":
		return float64(p.cfg.Seed)
	}
	return 0
}

func (p *Picker) setField(name string, v float64) {
	c := &p.cfg.Controller
	switch name {
	case "kp":
		c.Kp = v
	case "ki":
		c.Ki = v
	case "kd":
		c.Kd = v
	case "min":
		c.Min = v
	case "max":
		c.Max = v
	case "seed":
		p.cfg.Seed = int64(v)
	}
}

// start validates the tuned config and hands over to the live view. An
// invalid config keeps the tune screen open with the error shown.
func (p Picker) start() (Picker, tea.Cmd) {
	live, err := NewModel(p.cfg.Clone(), p.registry, p.log, p.observers...)
	if err != nil {
		p.err = err
		return p, nil
	}
	p.live = live.WithTheme(p.theme)
	p.state = stateLive
	return p, p.live.Init()
}

func (p Picker) View() string {
	switch p.state {
	case statePresets:
		return p.viewPresets()
	case stateTune:
		return p.viewTune()
	case stateLive:
		return p.live.View()
	}
	return ""
}

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickArrow    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickDimmer   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	pickErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickDim.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (p Picker) viewPresets() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("PIDROAD") + "\n    " + pickSub.Render("keep the car in the middle of the road") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range p.presets {
		if i == p.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", pickArrow.Render("▸"), pickSelected.Render(fmt.Sprintf("%-14s", name)), pickInfo.Render(presetInfo[name]))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", pickDim.Render(fmt.Sprintf("  %-14s", name)), pickDimmer.Render(presetInfo[name]))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (p Picker) viewTune() string {
	var b strings.Builder
	name := p.presets[p.cursor]
	b.WriteString("\n\n    " + pickTitle.Render(strings.ToUpper(name)) + "\n    " + pickSub.Render(presetInfo[name]) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, field := range tuneFields {
		val := fmt.Sprintf("%8.3f", p.field(field))
		if field == "seed" {
			val = fmt.Sprintf("%8d", p.cfg.Seed)
		}
		if p.editing && i == p.fieldCursor {
			val = fmt.Sprintf("%8s", p.editBuf+"_")
		}
		if i == p.fieldCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", pickArrow.Render("▸"), pickSelected.Render(fmt.Sprintf("%-6s", field)), pickInfo.Bold(true).Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", pickDim.Render(fmt.Sprintf("  %-6s", field)), pickDimmer.Render(val))
		}
	}
	fmt.Fprintf(&b, "\n    %s %s\n", pickDim.Render("flags"), pickDimmer.Render(strings.Join(p.cfg.Controller.Flags, ", ")))
	if p.err != nil {
		b.WriteString("\n    " + pickErr.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunPicker starts the preset picker in the alternate screen.
func RunPicker(p Picker) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
