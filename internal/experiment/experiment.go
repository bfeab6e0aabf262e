package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/road"
	"github.com/san-kum/pidroad/internal/sim"
)

type Experiment struct {
	cfg        *config.Config
	log        *zap.Logger
	simulator  *sim.Simulator
	car        *road.Car
	controller sim.Controller
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg: cfg,
		log: zap.NewNop(),
	}
}

// SetLogger replaces the no-op logger used by the experiment and its simulator.
func (e *Experiment) SetLogger(l *zap.Logger) {
	if l != nil {
		e.log = l
	}
}

// Setup builds the car, controller and metrics from the config.
func (e *Experiment) Setup(registry *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	ctrl, err := registry.GetController(e.cfg)
	if err != nil {
		return err
	}

	e.car = road.NewCar(e.cfg.RoadGeometry(), e.cfg.RoadDisturbance())
	e.controller = ctrl
	e.simulator = sim.New(e.car, ctrl)
	e.simulator.SetLogger(e.log)
	for _, m := range registry.DefaultMetrics(e.cfg) {
		e.simulator.AddMetric(m)
	}

	e.log.Debug("experiment ready",
		zap.String("controller", e.cfg.Controller.Kind),
		zap.Float64("kp", e.cfg.Controller.Kp),
		zap.Float64("ki", e.cfg.Controller.Ki),
		zap.Float64("kd", e.cfg.Controller.Kd),
		zap.Strings("flags", e.cfg.Controller.Flags),
	)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, sim.Config{
		Ticks: e.cfg.Ticks,
		Seed:  e.cfg.Seed,
	})
}

// Factory builds independent plant/controller/metric sets for ensemble
// runs of this experiment's config. The controller kind is checked once up
// front so the returned factory cannot fail.
func (e *Experiment) Factory(registry *Registry) (sim.Factory, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := registry.GetController(e.cfg); err != nil {
		return nil, err
	}
	return func() (sim.Plant, sim.Controller, []sim.Metric) {
		ctrl, _ := registry.GetController(e.cfg)
		car := road.NewCar(e.cfg.RoadGeometry(), e.cfg.RoadDisturbance())
		return car, ctrl, registry.DefaultMetrics(e.cfg)
	}, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Car() *road.Car             { return e.car }
func (e *Experiment) Controller() sim.Controller { return e.controller }
func (e *Experiment) Config() *config.Config     { return e.cfg }
