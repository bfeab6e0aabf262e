package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/experiment"
	"github.com/san-kum/pidroad/internal/storage"
)

const scenarioYAML = `
name: flags
description: demo gains with and without the Clegg reset
steps:
  - preset: demo
    ticks: 50
    seed: 3
    save_as: with_reset
  - preset: demo
    flags: [clamp_output]
    kp: 0.5
    ticks: 50
    seed: 3
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "flags" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, err := sc.Steps[1].Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := config.GetPreset("demo")
	want.Controller.Kp = 0.5
	want.Controller.Flags = []string{"clamp_output"}
	want.Ticks = 50
	want.Seed = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("step config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no steps", "name: empty\n"},
		{"unknown preset", "steps:\n  - preset: nope\n"},
		{"inverted limits", "steps:\n  - min: 3\n    max: -3\n"},
		{"unknown flag", "steps:\n  - flags: [warp]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScenario(writeScenario(t, tt.body)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	store := storage.New(t.TempDir())
	runner := NewRunner(experiment.NewRegistry(), store, nil)

	results, err := runner.RunScenario(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID == "" || results[1].RunID != "" {
		t.Errorf("only the first step should be saved, got %q and %q", results[0].RunID, results[1].RunID)
	}
	for _, r := range results {
		if len(r.Result.Samples) != 50 {
			t.Errorf("step %d: expected 50 samples, got %d", r.Step, len(r.Result.Samples))
		}
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "with_reset" || runs[0].Seed != 3 {
		t.Errorf("unexpected stored runs %+v", runs)
	}
}

func TestRunGainSweep(t *testing.T) {
	runner := NewRunner(experiment.NewRegistry(), nil, nil)
	base := config.DefaultConfig()
	base.Ticks = 40

	points, err := runner.RunGainSweep(context.Background(), GainSweep{Base: base, Param: "kp", Min: 0.2, Max: 1.0, Steps: 5})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
		if _, ok := p.Metrics["tracking_error"]; !ok {
			t.Errorf("point %d missing tracking_error", i)
		}
	}
	if diff := cmp.Diff([]float64{0.2, 0.4, 0.6, 0.8, 1.0}, values, cmpApprox); diff != "" {
		t.Errorf("sweep values mismatch (-want +got):\n%s", diff)
	}
	if base.Controller.Kp != config.DefaultKp {
		t.Error("sweep must not modify the base config")
	}

	if _, err := runner.RunGainSweep(context.Background(), GainSweep{Base: base, Param: "fps", Min: 1, Max: 2, Steps: 2}); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario for unknown param, got %v", err)
	}
}

var cmpApprox = cmp.Comparer(func(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
})

func TestRunSeeds(t *testing.T) {
	runner := NewRunner(experiment.NewRegistry(), nil, nil)
	cfg := config.DefaultConfig()
	cfg.Ticks = 60
	cfg.Seed = 10

	outcomes, err := runner.RunSeeds(context.Background(), cfg, 4)
	if err != nil {
		t.Fatalf("seeds: %v", err)
	}

	seeds := make([]int64, len(outcomes))
	for i, o := range outcomes {
		seeds[i] = o.Seed
	}
	if diff := cmp.Diff([]int64{10, 11, 12, 13}, seeds); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}
	if n := DivergedCount(outcomes); n != 0 {
		t.Errorf("expected no divergence, got %d", n)
	}

	stats := Aggregate(outcomes)
	if len(stats) == 0 {
		t.Fatal("expected aggregated metrics")
	}
	for _, s := range stats {
		if s.Min > s.Mean || s.Mean > s.Max {
			t.Errorf("%s: mean %f outside [%f, %f]", s.Name, s.Mean, s.Min, s.Max)
		}
	}
}

func TestAggregate(t *testing.T) {
	outcomes := []SeedOutcome{
		{Seed: 1, Metrics: map[string]float64{"b": 2, "a": 1}},
		{Seed: 2, Metrics: map[string]float64{"b": 4, "a": 1}},
	}
	got := Aggregate(outcomes)
	want := []MetricStats{
		{Name: "a", Mean: 1, StdDev: 0, Min: 1, Max: 1},
		{Name: "b", Mean: 3, StdDev: 1.4142135623730951, Min: 2, Max: 4},
	}
	if diff := cmp.Diff(want, got, cmpApprox); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}
