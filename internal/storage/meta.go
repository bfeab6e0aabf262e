package storage

import "github.com/san-kum/pidroad/internal/config"

// NewMetadata fills in the run description from the config it was run
// with. Save completes the rest.
func NewMetadata(name string, cfg *config.Config) RunMetadata {
	kind := cfg.Controller.Kind
	if kind == "" {
		kind = "pid"
	}
	return RunMetadata{
		Name:       name,
		Seed:       cfg.Seed,
		Controller: kind,
		Kp:         cfg.Controller.Kp,
		Ki:         cfg.Controller.Ki,
		Kd:         cfg.Controller.Kd,
		Min:        cfg.Controller.Min,
		Max:        cfg.Controller.Max,
		Flags:      append([]string(nil), cfg.Controller.Flags...),
		FPS:        cfg.FPS,
	}
}
