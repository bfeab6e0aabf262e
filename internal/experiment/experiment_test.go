package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/sim"
)

func TestRunDemo(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ticks = 200

	exp := New(cfg)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Samples) != 200 {
		t.Fatalf("expected 200 samples, got %d", len(result.Samples))
	}

	for _, s := range result.Samples {
		if math.Abs(s.Correction) > config.DefaultLimit {
			t.Fatalf("tick %d: correction %f exceeds limit", s.Tick, s.Correction)
		}
	}
	for _, name := range []string{"tracking_error", "control_effort", "saturation", "resets", "off_road"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	run := func() *sim.Result {
		cfg := config.DefaultConfig()
		cfg.Ticks = 100
		cfg.Seed = 5
		exp := New(cfg)
		if err := exp.Setup(NewRegistry()); err != nil {
			t.Fatalf("setup: %v", err)
		}
		r, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return r
	}

	if diff := cmp.Diff(run().Samples, run().Samples); diff != "" {
		t.Errorf("same seed produced different runs:\n%s", diff)
	}
}

func TestControllerImprovesTracking(t *testing.T) {
	errorFor := func(preset string) float64 {
		cfg := config.GetPreset(preset)
		cfg.Ticks = 500
		cfg.Seed = 3
		exp := New(cfg)
		if err := exp.Setup(NewRegistry()); err != nil {
			t.Fatalf("setup %s: %v", preset, err)
		}
		r, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run %s: %v", preset, err)
		}
		return r.Metrics["tracking_error"]
	}

	closed, open := errorFor("demo"), errorFor("open_loop")
	if closed >= open {
		t.Errorf("expected demo tracking error %f below open loop %f", closed, open)
	}
}

func TestSetupRejectsUnknownController(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Controller.Kind = "lqr"

	if err := New(cfg).Setup(NewRegistry()); err == nil {
		t.Error("expected unknown controller error")
	}
}

func TestRunWithoutSetup(t *testing.T) {
	if _, err := New(config.DefaultConfig()).Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
}

func TestFactoryEnsemble(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ticks = 50
	exp := New(cfg)
	registry := NewRegistry()

	factory, err := exp.Factory(registry)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	results, err := sim.NewEnsemble(factory, 3, 10).Run(context.Background(), sim.Config{Ticks: cfg.Ticks})
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if cmp.Equal(results[0].Positions(), results[1].Positions()) {
		t.Error("different seeds should give different paths")
	}
}

func TestListControllers(t *testing.T) {
	want := []string{"manual", "none", "pid"}
	if diff := cmp.Diff(want, NewRegistry().ListControllers()); diff != "" {
		t.Errorf("controllers mismatch (-want +got):\n%s", diff)
	}
}
