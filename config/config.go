// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Rules     RulesConfig     `yaml:"rules"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the agent population and the spawn volume.
type WorldConfig struct {
	Agents int     `yaml:"agents"` // Number of agents in the flock
	Extent float64 `yaml:"extent"` // Spawn cube spans [-extent, extent] on each axis
	Seed   int64   `yaml:"seed"`   // RNG seed for spawning (0 = wall clock)
}

// RulesConfig holds the six tunables of the flocking model: a field-of-view
// radius and a force magnitude for each behavior rule.
type RulesConfig struct {
	SeparationFOV float64 `yaml:"separation_fov"` // Neighbor radius for repulsion
	SeparationMag float64 `yaml:"separation_mag"` // Repulsion strength
	AlignmentFOV  float64 `yaml:"alignment_fov"`  // Neighbor radius for velocity matching
	AlignmentMag  float64 `yaml:"alignment_mag"`  // Velocity matching strength
	CohesionFOV   float64 `yaml:"cohesion_fov"`   // Neighbor radius for centroid pull
	CohesionMag   float64 `yaml:"cohesion_mag"`   // Centroid pull strength
}

// SpawnConfig selects the starting-position generator.
type SpawnConfig struct {
	Mode           string  `yaml:"mode"`            // "uniform" or "clustered"
	NoiseScale     float64 `yaml:"noise_scale"`     // Clustered: noise frequency over the cube
	NoiseThreshold float64 `yaml:"noise_threshold"` // Clustered: accept candidates where noise >= this
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int32 `yaml:"window_ticks"` // Ticks per stats window
	PerfWindow  int   `yaml:"perf_window"`  // Ticks in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Side   float64 // Spawn cube edge length
	Volume float64 // Spawn cube volume
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config and fills in
// defaults for fields a user config left unset.
func (c *Config) computeDerived() {
	if c.Spawn.Mode == "" {
		c.Spawn.Mode = "uniform"
	}
	if c.Spawn.NoiseScale == 0 {
		c.Spawn.NoiseScale = 0.08
	}
	if c.Spawn.NoiseThreshold == 0 {
		c.Spawn.NoiseThreshold = 0.6
	}
	if c.Telemetry.WindowTicks < 1 {
		c.Telemetry.WindowTicks = 60
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 240
	}

	c.Derived.Side = 2 * c.World.Extent
	c.Derived.Volume = c.Derived.Side * c.Derived.Side * c.Derived.Side
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
