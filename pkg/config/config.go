// Package config loads the Linea runtime settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "5s" style strings.
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the tunable parameters of the sketch runtime.
type Config struct {
	// Tolerance is the coincidence tolerance used when trim boundary
	// detection matches vertices onto a curve.
	Tolerance float64 `yaml:"tolerance"`

	// IntersectSamples is the polyline sampling density of the generic
	// curve intersection routine.
	IntersectSamples int `yaml:"intersect_samples"`

	// EngineTimeout is the hard limit for one script evaluation.
	EngineTimeout Duration `yaml:"engine_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tolerance:        1e-6,
		IntersectSamples: 256,
		EngineTimeout:    Duration(5 * time.Second),
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.IntersectSamples < 16 {
		return fmt.Errorf("intersect_samples must be at least 16, got %d", c.IntersectSamples)
	}
	if c.EngineTimeout <= 0 {
		return fmt.Errorf("engine_timeout must be positive, got %s", c.EngineTimeout.Std())
	}
	return nil
}
