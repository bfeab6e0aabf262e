package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidroad/internal/pid"
	"github.com/san-kum/pidroad/internal/road"
)

const (
	DefaultKp     = 0.85
	DefaultKi     = 0.05
	DefaultKd     = 0.02
	DefaultLimit  = 7.5
	DefaultFPS    = 10
	DefaultTicks  = 600
	DefaultSeed   = 1
	DefaultPreset = "demo"
)

// ErrInvalidConfig indicates a configuration that cannot build a run.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Controller  ControllerConfig  `yaml:"controller"`
	Road        RoadConfig        `yaml:"road"`
	Disturbance DisturbanceConfig `yaml:"disturbance"`
	Ticks       int               `yaml:"ticks"`
	FPS         int               `yaml:"fps"`
	Seed        int64             `yaml:"seed"`
}

type ControllerConfig struct {
	Kind  string   `yaml:"kind"`
	Kp    float64  `yaml:"kp"`
	Ki    float64  `yaml:"ki"`
	Kd    float64  `yaml:"kd"`
	Min   float64  `yaml:"min"`
	Max   float64  `yaml:"max"`
	Flags []string `yaml:"flags"`
}

type RoadConfig struct {
	ScreenWidth int `yaml:"screen_width"`
	RoadWidth   int `yaml:"road_width"`
	RoadBegin   int `yaml:"road_begin"`
}

type DisturbanceConfig struct {
	GustThreshold int `yaml:"gust_threshold"`
	GustMax       int `yaml:"gust_max"`
	DriftMax      int `yaml:"drift_max"`
}

// DefaultConfig reproduces the classic road demo: deliberately suboptimal
// gains that overshoot, a Clegg integrator and a ±7.5 column steering limit.
func DefaultConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			Kind:  "pid",
			Kp:    DefaultKp,
			Ki:    DefaultKi,
			Kd:    DefaultKd,
			Min:   -DefaultLimit,
			Max:   DefaultLimit,
			Flags: []string{"reset_acc_on_zero_cross", "clamp_output"},
		},
		Road: RoadConfig{
			ScreenWidth: road.DefaultScreenWidth,
			RoadWidth:   road.DefaultRoadWidth,
			RoadBegin:   road.DefaultRoadBegin,
		},
		Disturbance: DisturbanceConfig{
			GustThreshold: road.DefaultGustThreshold,
			GustMax:       road.DefaultScreenWidth / 2,
			DriftMax:      road.DefaultDriftMax,
		},
		Ticks: DefaultTicks,
		FPS:   DefaultFPS,
		Seed:  DefaultSeed,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Controller.Flags = append([]string(nil), c.Controller.Flags...)
	return &cp
}

// Validate checks everything a run needs, so that building a controller
// from a validated config never trips the limits contract.
func (c *Config) Validate() error {
	// run metadata is JSON, which has no encoding for NaN or ±Inf
	params := []struct {
		name string
		v    float64
	}{
		{"kp", c.Controller.Kp}, {"ki", c.Controller.Ki}, {"kd", c.Controller.Kd},
		{"min", c.Controller.Min}, {"max", c.Controller.Max},
	}
	for _, p := range params {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: controller %s must be finite, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	if !(c.Controller.Min < c.Controller.Max) {
		return fmt.Errorf("%w: controller min %v must be below max %v", ErrInvalidConfig, c.Controller.Min, c.Controller.Max)
	}
	if _, err := c.ControllerFlags(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.RoadGeometry().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Disturbance.DriftMax < 0 || c.Disturbance.GustMax < 0 {
		return fmt.Errorf("%w: disturbance magnitudes must not be negative", ErrInvalidConfig)
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	return nil
}

func (c *Config) ControllerFlags() (pid.Flags, error) {
	return pid.ParseFlags(c.Controller.Flags)
}

// NewController builds a configured controller. The config must be valid.
func (c *Config) NewController() (*pid.Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	flags, _ := c.ControllerFlags()

	ctrl := pid.New(c.Controller.Kp, c.Controller.Ki, c.Controller.Kd)
	ctrl.SetLimits(c.Controller.Min, c.Controller.Max)
	ctrl.SetFlags(flags)
	return ctrl, nil
}

func (c *Config) RoadGeometry() road.Road {
	return road.Road{
		ScreenWidth: c.Road.ScreenWidth,
		RoadWidth:   c.Road.RoadWidth,
		RoadBegin:   c.Road.RoadBegin,
	}
}

func (c *Config) RoadDisturbance() road.Disturbance {
	return road.Disturbance{
		GustThreshold: c.Disturbance.GustThreshold,
		GustMax:       c.Disturbance.GustMax,
		DriftMax:      c.Disturbance.DriftMax,
	}
}

// SetFlags stores a flag set back as names.
func (c *Config) SetFlags(f pid.Flags) {
	c.Controller.Flags = f.Names()
}
