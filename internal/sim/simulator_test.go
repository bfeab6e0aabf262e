package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/pidroad/internal/pid"
)

// testPlant drifts by +1 per tick and moves by -correction.
type testPlant struct {
	pos      float64
	setpoint float64
}

func (p *testPlant) Disturb(rng *rand.Rand)      { p.pos++ }
func (p *testPlant) Measure() (float64, float64) { return p.pos - p.setpoint, p.pos }
func (p *testPlant) Apply(correction float64)    { p.pos -= correction }
func (p *testPlant) Position() float64           { return p.pos }

type testController struct {
	gain float64
}

func (c *testController) Step(err, input float64) pid.Terms {
	return pid.Terms{P: c.gain * err, Correction: c.gain * err}
}

func (c *testController) Accumulator() float64 { return 0 }

func TestSimulatorRun(t *testing.T) {
	s := New(&testPlant{}, &testController{gain: 1})

	result, err := s.Run(context.Background(), Config{Ticks: 5, Seed: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(result.Samples))
	}

	// full correction cancels each drift, so every tick measures +1
	want := []float64{1, 1, 1, 1, 1}
	if diff := cmp.Diff(want, result.Positions()); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, result.Corrections()); diff != "" {
		t.Errorf("corrections mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulatorRunsRealController(t *testing.T) {
	plant := &testPlant{setpoint: 0}
	ctrl := pid.New(0, 1, 0)
	s := New(plant, ctrl)

	result, err := s.Run(context.Background(), Config{Ticks: 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	last := result.Samples[len(result.Samples)-1]
	if last.Accumulator != ctrl.Accumulator() {
		t.Errorf("expected sample accumulator %f, got %f", ctrl.Accumulator(), last.Accumulator)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&testPlant{}, &testController{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero ticks", Config{Ticks: 0}},
		{"negative ticks", Config{Ticks: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(s Sample) {
	m.count++
	m.sum += s.Error
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(&testPlant{}, &testController{gain: 1})

	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Ticks: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

type countingObserver struct{ ticks []int }

func (o *countingObserver) OnTick(s Sample) { o.ticks = append(o.ticks, s.Tick) }

func TestSimulatorObservers(t *testing.T) {
	s := New(&testPlant{}, &testController{})
	obs := &countingObserver{}
	s.AddObserver(obs)

	if _, err := s.Run(context.Background(), Config{Ticks: 3}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, obs.ticks); diff != "" {
		t.Errorf("observer ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulatorCancel(t *testing.T) {
	s := New(&testPlant{}, &testController{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Ticks: 100})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Samples) != 0 {
		t.Error("expected empty partial result")
	}
}

func TestSimulatorDivergence(t *testing.T) {
	plant := &testPlant{pos: math.Inf(1)}
	s := New(plant, &testController{})

	result, err := s.Run(context.Background(), Config{Ticks: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %d", len(result.Errors))
	}

	var simErr *SimulationError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected SimulationError, got %T", result.Errors[0])
	}
	if !errors.Is(simErr, ErrDiverged) || simErr.Tick != 0 {
		t.Errorf("unexpected error %v", simErr)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(&testPlant{}, &testController{gain: 1})

	seen := 0
	err := s.RunWithCallback(context.Background(), Config{}, func(Sample) bool {
		seen++
		return seen < 7
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if seen != 7 {
		t.Errorf("expected 7 ticks, got %d", seen)
	}
}

func TestEnsemble(t *testing.T) {
	factory := func() (Plant, Controller, []Metric) {
		return &testPlant{}, pid.New(0.5, 0, 0), []Metric{&testMetric{}}
	}

	results, err := NewEnsemble(factory, 4, 100).Run(context.Background(), Config{Ticks: 20})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if len(r.Samples) != 20 {
			t.Errorf("run %d: expected 20 samples, got %d", i, len(r.Samples))
		}
		if diff := cmp.Diff(results[0].Corrections(), r.Corrections()); diff != "" {
			t.Errorf("run %d differs from run 0 for a seed-independent plant:\n%s", i, diff)
		}
	}
}

func TestStepper(t *testing.T) {
	plant := &testPlant{}
	st := New(plant, &testController{gain: 1}).Stepper(3)

	for i := 0; i < 4; i++ {
		s, err := st.Next()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if s.Tick != i {
			t.Errorf("expected tick %d, got %d", i, s.Tick)
		}
	}
	if st.Ticks() != 4 {
		t.Errorf("expected 4 ticks, got %d", st.Ticks())
	}

	st.Rewind()
	if st.Ticks() != 0 {
		t.Errorf("expected rewind to clear ticks, got %d", st.Ticks())
	}

	plant.pos = math.NaN()
	if _, err := st.Next(); !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
	if st.Ticks() != 0 {
		t.Error("failed tick should not count")
	}
}
