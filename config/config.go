// Package config defines the notegraph configuration and loads it from YAML
// or TOML files.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/TFMV/notegraph/graph"
	"github.com/TFMV/notegraph/physics"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config represents the complete configuration.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics" toml:"physics"`
	Scheduler SchedulerConfig `yaml:"scheduler" toml:"scheduler"`
	Layout    LayoutConfig    `yaml:"layout" toml:"layout"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// PhysicsConfig tunes the force model and the integrator.
type PhysicsConfig struct {
	RepulsionStrength  float64 `yaml:"repulsion_strength" toml:"repulsion_strength"`
	AttractionStrength float64 `yaml:"attraction_strength" toml:"attraction_strength"`
	MinDistance        float64 `yaml:"min_distance" toml:"min_distance"`
	MaxDistance        float64 `yaml:"max_distance" toml:"max_distance"`
	Dampening          float64 `yaml:"dampening" toml:"dampening"`
	Epsilon            float64 `yaml:"epsilon" toml:"epsilon"`
}

// SchedulerConfig controls tick cadence and drag release.
type SchedulerConfig struct {
	FrameInterval string `yaml:"frame_interval" toml:"frame_interval"` // e.g. "16ms"
	SettleDelay   string `yaml:"settle_delay" toml:"settle_delay"`     // e.g. "1s"
	StartDelay    string `yaml:"start_delay" toml:"start_delay"`       // delay before the first run after a load
}

// LayoutConfig controls registry membership and seeding.
type LayoutConfig struct {
	RemovalPolicy string  `yaml:"removal_policy" toml:"removal_policy"` // "prune" | "retain"
	Seed          int64   `yaml:"seed" toml:"seed"`
	CenterX       float64 `yaml:"center_x" toml:"center_x"`
	CenterY       float64 `yaml:"center_y" toml:"center_y"`
	Radius        float64 `yaml:"radius" toml:"radius"`
	Jitter        float64 `yaml:"jitter" toml:"jitter"`
	MaxTicks      int     `yaml:"max_ticks" toml:"max_ticks"` // headless cap
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	p := physics.DefaultParameters()
	return &Config{
		Physics: PhysicsConfig{
			RepulsionStrength:  p.RepulsionStrength,
			AttractionStrength: p.AttractionStrength,
			MinDistance:        p.MinDistance,
			MaxDistance:        p.MaxDistance,
			Dampening:          p.Dampening,
			Epsilon:            p.Epsilon,
		},
		Scheduler: SchedulerConfig{
			FrameInterval: physics.DefaultFrameInterval.String(),
			SettleDelay:   physics.DefaultSettleDelay.String(),
			StartDelay:    "100ms",
		},
		Layout: LayoutConfig{
			RemovalPolicy: graph.Prune.String(),
			Seed:          1,
			CenterX:       400,
			CenterY:       300,
			Radius:        200,
			Jitter:        50,
			MaxTicks:      5000,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Parameters converts the physics section for the simulation.
func (c *Config) Parameters() physics.Parameters {
	return physics.Parameters{
		RepulsionStrength:  c.Physics.RepulsionStrength,
		AttractionStrength: c.Physics.AttractionStrength,
		MinDistance:        c.Physics.MinDistance,
		MaxDistance:        c.Physics.MaxDistance,
		Dampening:          c.Physics.Dampening,
		Epsilon:            c.Physics.Epsilon,
	}
}

// FrameInterval parses the scheduler frame interval.
func (c *Config) FrameInterval() (time.Duration, error) {
	return parseDuration("scheduler.frame_interval", c.Scheduler.FrameInterval)
}

// SettleDelay parses the drag settle delay.
func (c *Config) SettleDelay() (time.Duration, error) {
	return parseDuration("scheduler.settle_delay", c.Scheduler.SettleDelay)
}

// StartDelay parses the delay before a freshly loaded snapshot starts moving.
func (c *Config) StartDelay() (time.Duration, error) {
	return parseDuration("scheduler.start_delay", c.Scheduler.StartDelay)
}

// RemovalPolicy parses the layout removal policy.
func (c *Config) RemovalPolicy() (graph.RemovalPolicy, error) {
	return graph.ParseRemovalPolicy(c.Layout.RemovalPolicy)
}

// Seeder builds the position function for nodes without coordinates.
func (c *Config) Seeder() *physics.NoiseSeeder {
	return physics.NewNoiseSeeder(
		c.Layout.Seed,
		graph.Vector{X: c.Layout.CenterX, Y: c.Layout.CenterY},
		c.Layout.Radius,
		c.Layout.Jitter,
	)
}

// Validate checks that the configuration describes a simulation that can
// settle.
func (c *Config) Validate() error {
	var errs []error
	p := c.Physics
	for _, f := range []struct {
		key string
		v   float64
	}{
		{"repulsion_strength", p.RepulsionStrength},
		{"attraction_strength", p.AttractionStrength},
		{"min_distance", p.MinDistance},
		{"max_distance", p.MaxDistance},
		{"dampening", p.Dampening},
		{"epsilon", p.Epsilon},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Errorf("physics.%s must be finite, got %v", f.key, f.v))
		}
	}
	if !(p.Dampening > 0 && p.Dampening < 1) {
		errs = append(errs, fmt.Errorf("physics.dampening must be in (0,1), got %v", p.Dampening))
	}
	if !(p.Epsilon > 0) {
		errs = append(errs, fmt.Errorf("physics.epsilon must be positive, got %v", p.Epsilon))
	}
	if !(p.MinDistance > 0) {
		errs = append(errs, fmt.Errorf("physics.min_distance must be positive, got %v", p.MinDistance))
	}
	if !(p.MaxDistance > 0) {
		errs = append(errs, fmt.Errorf("physics.max_distance must be positive, got %v", p.MaxDistance))
	}
	if !(p.RepulsionStrength >= 0 && p.AttractionStrength >= 0) {
		errs = append(errs, errors.New("physics strengths must not be negative"))
	}
	if d, err := c.FrameInterval(); err != nil {
		errs = append(errs, err)
	} else if d <= 0 {
		errs = append(errs, errors.New("scheduler.frame_interval must be positive"))
	}
	if _, err := c.SettleDelay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.StartDelay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RemovalPolicy(); err != nil {
		errs = append(errs, fmt.Errorf("layout.removal_policy: %w", err))
	}
	if c.Layout.MaxTicks <= 0 {
		errs = append(errs, errors.New("layout.max_ticks must be positive"))
	}
	return errors.Join(errs...)
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
