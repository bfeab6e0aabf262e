package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/sim"
	"github.com/san-kum/pidroad/internal/storage"
)

// ErrInvalidScenario indicates a scenario file that cannot be run.
var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Unset fields keep the preset's value.
type ScenarioStep struct {
	Preset string   `yaml:"preset"`
	Kind   string   `yaml:"kind"`
	Kp     *float64 `yaml:"kp"`
	Ki     *float64 `yaml:"ki"`
	Kd     *float64 `yaml:"kd"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Flags  []string `yaml:"flags"`
	Ticks  int      `yaml:"ticks"`
	Seed   *int64   `yaml:"seed"`
	SaveAs string   `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate builds every step's config without running anything.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, step := range s.Steps {
		if _, err := step.Config(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidScenario, i+1, err)
		}
	}
	return nil
}

// Config resolves the step against its preset, or the default config when
// no preset is named.
func (st ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if st.Preset != "" {
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", st.Preset)
		}
	}

	c := &cfg.Controller
	if st.Kind != "" {
		c.Kind = st.Kind
	}
	for _, o := range []struct {
		src *float64
		dst *float64
	}{{st.Kp, &c.Kp}, {st.Ki, &c.Ki}, {st.Kd, &c.Kd}, {st.Min, &c.Min}, {st.Max, &c.Max}} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if st.Flags != nil {
		c.Flags = append([]string(nil), st.Flags...)
	}
	if st.Ticks > 0 {
		cfg.Ticks = st.Ticks
	}
	if st.Seed != nil {
		cfg.Seed = *st.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StepResult is the outcome of one scenario step. RunID is empty unless the
// step was saved.
type StepResult struct {
	Step   int
	RunID  string
	Config *config.Config
	Result *sim.Result
}

// Runner executes scenarios and sweeps. A nil store disables saving.
type Runner struct {
	registry *experiment.Registry
	store    *storage.Store
	log      *zap.Logger
}

func NewRunner(registry *experiment.Registry, store *storage.Store, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{registry: registry, store: store, log: log}
}

func (r *Runner) run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	exp := experiment.New(cfg)
	exp.SetLogger(r.log)
	if err := exp.Setup(r.registry); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the steps completed so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		r.log.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("preset", step.Preset),
		)

		result, err := r.run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Config: cfg, Result: result}
		if step.SaveAs != "" && r.store != nil {
			id, err := r.store.Save(storage.NewMetadata(step.SaveAs, cfg), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			r.log.Info("step saved", zap.String("run", id))
		}
		results = append(results, sr)
	}

	return results, nil
}

// GainSweep runs the base config once per gain value, evenly spaced from
// Min to Max inclusive.
type GainSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

type SweepPoint struct {
	Value   float64
	Metrics map[string]float64
}

func (r *Runner) RunGainSweep(ctx context.Context, sweep GainSweep) ([]SweepPoint, error) {
	if sweep.Steps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 steps, got %d", ErrInvalidScenario, sweep.Steps)
	}

	points := make([]SweepPoint, 0, sweep.Steps)
	step := (sweep.Max - sweep.Min) / float64(sweep.Steps-1)

	for i := 0; i < sweep.Steps; i++ {
		val := sweep.Min + float64(i)*step

		cfg := sweep.Base.Clone()
		switch sweep.Param {
		case "kp":
			cfg.Controller.Kp = val
		case "ki":
			cfg.Controller.Ki = val
		case "kd":
			cfg.Controller.Kd = val
		default:
			return nil, fmt.Errorf("%w: cannot sweep %q", ErrInvalidScenario, sweep.Param)
		}

		result, err := r.run(ctx, cfg)
		if err != nil {
			return points, err
		}
		points = append(points, SweepPoint{Value: val, Metrics: result.Metrics})
		r.log.Debug("sweep point", zap.String(sweep.Param, fmt.Sprintf("%.4f", val)), zap.Int("i", i+1))
	}
	return points, nil
}

// SeedOutcome is one member of a seed ensemble.
type SeedOutcome struct {
	Seed     int64
	Metrics  map[string]float64
	Diverged bool
}

// RunSeeds repeats cfg for runs consecutive seeds in parallel.
func (r *Runner) RunSeeds(ctx context.Context, cfg *config.Config, runs int) ([]SeedOutcome, error) {
	if runs <= 0 {
		return nil, fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidScenario, runs)
	}

	factory, err := experiment.New(cfg).Factory(r.registry)
	if err != nil {
		return nil, err
	}

	results, err := sim.NewEnsemble(factory, runs, cfg.Seed).Run(ctx, sim.Config{Ticks: cfg.Ticks})
	if err != nil {
		return nil, err
	}

	outcomes := make([]SeedOutcome, len(results))
	for i, res := range results {
		outcomes[i] = SeedOutcome{
			Seed:     cfg.Seed + int64(i),
			Metrics:  res.Metrics,
			Diverged: len(res.Errors) > 0,
		}
	}
	r.log.Info("seed ensemble done", zap.Int("runs", runs), zap.Int64("first_seed", cfg.Seed))
	return outcomes, nil
}

// MetricStats is the spread of one metric across an ensemble.
type MetricStats struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Aggregate summarizes every metric across outcomes, sorted by name.
func Aggregate(outcomes []SeedOutcome) []MetricStats {
	values := make(map[string][]float64)
	for _, o := range outcomes {
		for name, v := range o.Metrics {
			values[name] = append(values[name], v)
		}
	}

	stats := make([]MetricStats, 0, len(values))
	for name, vs := range values {
		ms := MetricStats{Name: name, Min: vs[0], Max: vs[0]}
		ms.Mean, ms.StdDev = stat.MeanStdDev(vs, nil)
		if len(vs) == 1 {
			ms.StdDev = 0
		}
		for _, v := range vs {
			ms.Min, ms.Max = min(ms.Min, v), max(ms.Max, v)
		}
		stats = append(stats, ms)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// DivergedCount counts ensemble members that stopped early.
func DivergedCount(outcomes []SeedOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Diverged {
			n++
		}
	}
	return n
}
