package config

import "sort"

// Presets are named variations of the default demo. Only the controller
// section differs between them.
var Presets = map[string]ControllerConfig{
	"demo": {
		Kind: "pid", Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Min: -DefaultLimit, Max: DefaultLimit,
		Flags: []string{"reset_acc_on_zero_cross", "clamp_output"},
	},
	"proportional": {
		Kind: "pid", Kp: 1.0, Ki: 0, Kd: 0, Min: -DefaultLimit, Max: DefaultLimit,
		Flags: []string{"clamp_output"},
	},
	"unclamped": {
		Kind: "pid", Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Min: -DefaultLimit, Max: DefaultLimit,
		Flags: nil,
	},
	"clegg": {
		Kind: "pid", Kp: 0.6, Ki: 0.1, Kd: 0.05, Min: -DefaultLimit, Max: DefaultLimit,
		Flags: []string{"reset_acc_on_zero_cross"},
	},
	"antiwindup": {
		Kind: "pid", Kp: DefaultKp, Ki: 0.2, Kd: DefaultKd, Min: -DefaultLimit, Max: DefaultLimit,
		Flags: []string{"clamp_acc_to_output_bounds", "clamp_output"},
	},
	"sluggish": {
		Kind: "pid", Kp: 0.2, Ki: 0.01, Kd: 0, Min: -2.5, Max: 2.5,
		Flags: []string{"clamp_output"},
	},
	"open_loop": {
		Kind: "none", Min: -DefaultLimit, Max: DefaultLimit,
	},
}

// GetPreset returns the default config with the named controller preset
// applied, or nil when no such preset exists.
func GetPreset(name string) *Config {
	ctrl, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Controller = ctrl
	cfg.Controller.Flags = append([]string(nil), ctrl.Flags...)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
