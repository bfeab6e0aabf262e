package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidroad/internal/config"
	"github.com/san-kum/pidroad/internal/control"
	"github.com/san-kum/pidroad/internal/metrics"
	"github.com/san-kum/pidroad/internal/sim"
)

type Registry struct {
	controllers map[string]func(*config.Config) (sim.Controller, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func(*config.Config) (sim.Controller, error)),
	}

	r.controllers["pid"] = func(cfg *config.Config) (sim.Controller, error) {
		return cfg.NewController()
	}
	r.controllers["none"] = func(cfg *config.Config) (sim.Controller, error) {
		return control.NewNone(), nil
	}
	r.controllers["manual"] = func(cfg *config.Config) (sim.Controller, error) {
		return control.NewManual(), nil
	}

	return r
}

// GetController builds the controller named by cfg.Controller.Kind. An
// empty kind means "pid".
func (r *Registry) GetController(cfg *config.Config) (sim.Controller, error) {
	kind := cfg.Controller.Kind
	if kind == "" {
		kind = "pid"
	}
	fn, ok := r.controllers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", kind)
	}
	return fn(cfg)
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	return metrics.Default(cfg.RoadGeometry())
}
