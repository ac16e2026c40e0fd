// Package config loads and saves run configuration as YAML, in the same
// shape the CLI flags expose.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/potential"
)

const (
	DefaultNBinaries    = 1000
	DefaultProcesses    = 8
	DefaultM1Cutoff     = 7.0
	DefaultVDispersion  = 5.0     // km/s
	DefaultMaxEvTime    = 12000.0 // Myr
	DefaultTimestepSize = 1.0     // Myr
)

type Config struct {
	NBinaries    int     `yaml:"n_binaries"`
	Processes    int     `yaml:"processes"`
	M1Cutoff     float64 `yaml:"m1_cutoff"`
	VDispersion  float64 `yaml:"v_dispersion"`
	MaxEvTime    float64 `yaml:"max_ev_time"`
	TimestepSize float64 `yaml:"timestep_size"`
	Seed         int64   `yaml:"seed"`

	Potential     string  `yaml:"potential"`
	PointMassMsun float64 `yaml:"point_mass_msun,omitempty"`

	Filters []string        `yaml:"filters"`
	Output  string          `yaml:"output"`
	Evolve  evolve.Settings `yaml:"evolve"`
}

func DefaultConfig() *Config {
	return &Config{
		NBinaries:    DefaultNBinaries,
		Processes:    DefaultProcesses,
		M1Cutoff:     DefaultM1Cutoff,
		VDispersion:  DefaultVDispersion,
		MaxEvTime:    DefaultMaxEvTime,
		TimestepSize: DefaultTimestepSize,
		Potential:    "milkyway",
		Filters:      []string{"J", "H", "K", "G", "BP", "RP"},
		Output:       "population",
		Evolve:       evolve.DefaultSettings(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Field builds the configured potential.
func (c *Config) Field() (potential.Field, error) {
	switch c.Potential {
	case "", "milkyway":
		return potential.NewMilkyWay(), nil
	case "pointmass":
		return potential.PointMass{Mass: c.PointMassMsun}, nil
	case "zero":
		return potential.Zero{}, nil
	default:
		return nil, fmt.Errorf("config: unknown potential %q", c.Potential)
	}
}
