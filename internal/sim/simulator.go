package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

type Simulator struct {
	plant      Plant
	controller Controller
	metrics    []Metric
	observers  []Observer
	log        *zap.Logger
}

func New(plant Plant, controller Controller) *Simulator {
	return &Simulator{
		plant:      plant,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the no-op logger.
func (s *Simulator) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s.log.Debug("run started", zap.Int("ticks", cfg.Ticks), zap.Int64("seed", cfg.Seed))

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		sample, err := s.tick(i, rng)
		if err != nil {
			s.log.Warn("run stopped", zap.Error(err))
			result.Errors = append(result.Errors, err)
			break
		}
		result.Samples = append(result.Samples, sample)
	}

	s.collect(result)
	s.log.Debug("run finished", zap.Int("samples", len(result.Samples)))
	return result, nil
}

// RunWithCallback steps the loop until the callback returns false or the
// tick budget runs out. A zero Ticks budget runs until cancelled.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if cfg.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, cfg.Ticks)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; cfg.Ticks == 0 || i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sample, err := s.tick(i, rng)
		if err != nil {
			return err
		}
		if !callback(sample) {
			return nil
		}
	}
	return nil
}

// tick runs one disturb, measure, step, apply cycle.
func (s *Simulator) tick(i int, rng *rand.Rand) (Sample, error) {
	s.plant.Disturb(rng)

	pos := s.plant.Position()
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return Sample{}, &SimulationError{Tick: i, Position: pos, Wrapped: ErrDiverged}
	}

	errVal, input := s.plant.Measure()
	terms := s.controller.Step(errVal, input)

	sample := Sample{
		Tick:        i,
		Position:    pos,
		Error:       errVal,
		Correction:  terms.Correction,
		Accumulator: s.controller.Accumulator(),
		P:           terms.P,
		I:           terms.I,
		D:           terms.D,
		Reset:       terms.Reset,
		Saturated:   terms.Saturated,
	}

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnTick(sample)
	}

	s.plant.Apply(terms.Correction)
	return sample, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, cfg.Ticks)
	}
	return nil
}

// Stepper advances a simulator one tick per call, for views that own their
// own clock.
type Stepper struct {
	sim  *Simulator
	rng  *rand.Rand
	seed int64
	next int
}

func (s *Simulator) Stepper(seed int64) *Stepper {
	return &Stepper{sim: s, rng: rand.New(rand.NewSource(seed)), seed: seed}
}

func (st *Stepper) Next() (Sample, error) {
	sample, err := st.sim.tick(st.next, st.rng)
	if err != nil {
		return Sample{}, err
	}
	st.next++
	return sample, nil
}

// Ticks returns the number of completed ticks.
func (st *Stepper) Ticks() int { return st.next }

// Rewind restarts the tick count and the disturbance sequence. The plant and
// controller are left alone.
func (st *Stepper) Rewind() {
	st.rng = rand.New(rand.NewSource(st.seed))
	st.next = 0
}
