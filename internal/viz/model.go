package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/control"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/pid"
	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

const (
	visibleRows     = 20
	historyCapacity = 300
	nudgeStep       = 1.0
)

// gainKeys is the tuning order used by tab.
var gainKeys = []string{"kp", "ki", "kd"}

// flagKeys maps the number keys to the flag they toggle.
var flagKeys = map[string]pid.Flags{
	"1": pid.ClampOutput,
	"2": pid.ResetAccOnZeroCross,
	"3": pid.ClampAccToOutputBounds,
}

type TickMsg time.Time

// Model drives one experiment tick by tick and renders the scrolling road
// next to the controller's live terms.
type Model struct {
	cfg     *config.Config
	exp     *experiment.Experiment
	stepper *sim.Stepper
	road    road.Road
	pid     *pid.Controller
	manual  *control.Manual

	rows        []string
	corrections []float64
	errors      []float64
	last        sim.Sample
	prevAcc     float64
	saturated   int

	running      bool
	selected     int
	initialGains map[string]float64
	initialFlags pid.Flags
	theme        Theme
	st           styles
	showHelp     bool
	err          error
	log          *zap.Logger
}

// NewModel builds the experiment for cfg. Observers see every tick the view
// takes, so a telemetry collector can follow the live session.
func NewModel(cfg *config.Config, registry *experiment.Registry, log *zap.Logger, observers ...sim.Observer) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	exp := experiment.New(cfg)
	exp.SetLogger(log)
	if err := exp.Setup(registry); err != nil {
		return Model{}, err
	}
	for _, o := range observers {
		exp.GetSimulator().AddObserver(o)
	}

	m := Model{
		cfg:          cfg,
		exp:          exp,
		stepper:      exp.GetSimulator().Stepper(cfg.Seed),
		road:         cfg.RoadGeometry(),
		rows:         make([]string, 0, visibleRows),
		corrections:  make([]float64, 0, historyCapacity),
		errors:       make([]float64, 0, historyCapacity),
		running:      true,
		initialGains: map[string]float64{},
		theme:        ThemeAsphalt,
		st:           newStyles(ThemeAsphalt),
		log:          log,
	}
	switch c := exp.Controller().(type) {
	case *pid.Controller:
		m.pid = c
		m.initialGains = c.GetParams()
		m.initialFlags = c.Flags()
	case *control.Manual:
		m.manual = c
	}
	return m, nil
}

// WithTheme returns the model with the named theme applied.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.st = newStyles(m.theme)
	return m
}

func (m Model) frame() time.Duration {
	return time.Second / time.Duration(m.cfg.FPS)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(gainKeys)
		case "up", "k":
			m.scaleGain(1.05)
		case "down", "j":
			m.scaleGain(0.95)
		case "1", "2", "3":
			m.toggleFlag(flagKeys[msg.String()])
		case "left", "h":
			m.nudge(nudgeStep)
		case "right", "l":
			m.nudge(-nudgeStep)
		case "t":
			m.theme = m.theme.next()
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the experiment by one tick and records it for display.
func (m *Model) step() {
	s, err := m.stepper.Next()
	if err != nil {
		m.err = err
		m.running = false
		m.log.Warn("live run stopped", zap.Error(err))
		return
	}

	m.rows = append(m.rows, m.road.Render(int(s.Position+0.5), m.prevAcc))
	if len(m.rows) > visibleRows {
		m.rows = m.rows[1:]
	}
	m.prevAcc = s.Accumulator
	m.last = s
	if s.Saturated {
		m.saturated++
	}

	m.corrections = append(m.corrections, s.Correction)
	m.errors = append(m.errors, s.Error)
	if len(m.corrections) > historyCapacity {
		m.corrections = m.corrections[1:]
		m.errors = m.errors[1:]
	}
}

func (m *Model) scaleGain(factor float64) {
	if m.pid == nil {
		return
	}
	key := gainKeys[m.selected]
	val := m.pid.GetParams()[key]
	if val == 0 {
		// let a zeroed gain grow again
		val = 1e-3
	}
	if err := m.pid.SetParam(key, val*factor); err != nil {
		m.log.Error("set gain", zap.String("param", key), zap.Error(err))
	}
}

func (m *Model) toggleFlag(f pid.Flags) {
	if m.pid == nil {
		return
	}
	m.pid.SetFlags(m.pid.Flags() ^ f)
}

// nudge steers through the manual controller when it drives, and
// otherwise pushes the car so the controller has to recover.
func (m *Model) nudge(correction float64) {
	if m.manual != nil {
		m.manual.Nudge(correction)
		return
	}
	m.exp.Car().Nudge(-correction)
}

// reset puts the car back in the middle and restores the starting gains,
// flags and disturbance sequence.
func (m *Model) reset() {
	m.exp.Car().Reset()
	m.stepper.Rewind()
	if m.pid != nil {
		for k, v := range m.initialGains {
			_ = m.pid.SetParam(k, v)
		}
		m.pid.SetFlags(m.initialFlags)
		m.pid.Reset()
	}
	m.rows = m.rows[:0]
	m.corrections = m.corrections[:0]
	m.errors = m.errors[:0]
	m.last = sim.Sample{}
	m.prevAcc = 0
	m.saturated = 0
	m.err = nil
	m.running = true
}

func (m Model) View() string {
	st := m.st

	var rows strings.Builder
	for i := 0; i < visibleRows-len(m.rows); i++ {
		rows.WriteString(st.colorRow(m.road.Row(-1)) + "\n")
	}
	for _, r := range m.rows {
		rows.WriteString(st.colorRow(r) + "\n")
	}
	roadView := st.roadPanel.Render(strings.TrimSuffix(rows.String(), "\n"))

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.controllerName())) + "\n")
	s.WriteString(m.status() + "\n\n")

	line := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	line("Tick", fmt.Sprintf("%d", m.stepper.Ticks()))
	line("Position", fmt.Sprintf("%.2f", m.last.Position))
	line("Error", fmt.Sprintf("%+.2f", m.last.Error))
	line("P", fmt.Sprintf("%+.3f", m.last.P))
	line("I", fmt.Sprintf("%+.3f", m.last.I))
	line("D", fmt.Sprintf("%+.3f", m.last.D))
	line("Correction", fmt.Sprintf("%+.3f", m.last.Correction))
	line("Accumulator", fmt.Sprintf("%.2f", m.last.Accumulator))

	if ticks := m.stepper.Ticks(); ticks > 0 {
		frac := float64(m.saturated) / float64(ticks)
		s.WriteString(st.label.Render("Saturated") + st.ratioBar(frac, 12) + st.value.Render(fmt.Sprintf(" %.0f%%", frac*100)) + "\n")
	}
	s.WriteString(st.label.Render("Error") + sparkline(m.errors, 24) + "\n")

	if m.pid != nil {
		s.WriteString("\nGAINS\n")
		params := m.pid.GetParams()
		for i, k := range gainKeys {
			text := fmt.Sprintf("%-4s %.4f", k, params[k])
			if i == m.selected {
				s.WriteString(st.active.Render("> "+text) + "\n")
			} else {
				s.WriteString("  " + st.value.Render(text) + "\n")
			}
		}
		s.WriteString("\nFLAGS\n")
		for _, key := range []string{"1", "2", "3"} {
			f := flagKeys[key]
			mark := "[ ]"
			if m.pid.Flags().Has(f) {
				mark = "[x]"
			}
			s.WriteString(fmt.Sprintf("  %s %s %s\n", key, mark, f.String()))
		}
	}

	if len(m.corrections) > 1 {
		chart := asciigraph.Plot(m.corrections, asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("Correction"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render(m.helpLine()))

	body := lipgloss.JoinHorizontal(lipgloss.Top, roadView, st.stats.Render(s.String()))
	if m.showHelp {
		return m.helpScreen() + "\n\n" + body
	}
	return body
}

func (m Model) controllerName() string {
	kind := m.cfg.Controller.Kind
	if kind == "" {
		kind = "pid"
	}
	return kind
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.bad.Render("STOPPED: " + m.err.Error())
	case !m.running:
		return m.st.warning.Render("PAUSED")
	}
	return m.st.good.Render("RUNNING")
}

func (m Model) helpLine() string {
	if m.manual != nil {
		return "SP:Pause R:Reset Q:Quit\n←→:Steer T:Theme ?:Help"
	}
	return "SP:Pause R:Reset Q:Quit\nTab:Gain ↑↓:Tune 1-3:Flags\nT:Theme ?:Help"
}

func (m Model) helpScreen() string {
	return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset car and gains      ║
║  Q        - Quit                     ║
║  Tab      - Select gain              ║
║  Up/K     - Increase gain (+5%)      ║
║  Down/J   - Decrease gain (-5%)      ║
║  1        - Toggle clamp_output      ║
║  2        - Toggle zero-cross reset  ║
║  3        - Toggle accumulator clamp ║
║  Left/H   - Nudge car left           ║
║  Right/L  - Nudge car right          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
}

// Run starts the live view in the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
