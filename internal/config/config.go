// Package config loads the suite configuration file (netreach.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TunerConfig exposes the control-loop constants of the tuning engine.
type TunerConfig struct {
	Window        int     `yaml:"window"`
	MinRuns       int     `yaml:"min_runs"`
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`
}

// Config is the full suite configuration.
type Config struct {
	DataDir     string      `yaml:"data_dir"`
	HistoryFile string      `yaml:"history_file"`
	ParamsFile  string      `yaml:"params_file"`
	SchemaFile  string      `yaml:"schema_file,omitempty"`
	LogLevel    string      `yaml:"log_level,omitempty"`
	Tuner       TunerConfig `yaml:"tuner,omitempty"`
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		DataDir:     "data",
		HistoryFile: "agent_history.jsonl",
		ParamsFile:  "agent_params.json",
		LogLevel:    "info",
		Tuner: TunerConfig{
			Window:        5,
			MinRuns:       2,
			LowThreshold:  0.7,
			HighThreshold: 0.95,
		},
	}
}

// Load reads a netreach.yaml file. A missing file is not an error: defaults
// apply. An empty path loads "netreach.yaml" if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = "netreach.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults for missing values
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = "agent_history.jsonl"
	}
	if cfg.ParamsFile == "" {
		cfg.ParamsFile = "agent_params.json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Tuner.Window == 0 {
		cfg.Tuner.Window = 5
	}
	if cfg.Tuner.MinRuns == 0 {
		cfg.Tuner.MinRuns = 2
	}
	if cfg.Tuner.LowThreshold == 0 {
		cfg.Tuner.LowThreshold = 0.7
	}
	if cfg.Tuner.HighThreshold == 0 {
		cfg.Tuner.HighThreshold = 0.95
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Tuner.LowThreshold <= 0 || c.Tuner.LowThreshold >= 1 {
		return fmt.Errorf("tuner.low_threshold %v outside (0, 1)", c.Tuner.LowThreshold)
	}
	if c.Tuner.HighThreshold <= 0 || c.Tuner.HighThreshold > 1 {
		return fmt.Errorf("tuner.high_threshold %v outside (0, 1]", c.Tuner.HighThreshold)
	}
	if c.Tuner.LowThreshold >= c.Tuner.HighThreshold {
		return fmt.Errorf("tuner.low_threshold %v must be below high_threshold %v",
			c.Tuner.LowThreshold, c.Tuner.HighThreshold)
	}
	if c.Tuner.MinRuns > c.Tuner.Window {
		return fmt.Errorf("tuner.min_runs %d exceeds window %d", c.Tuner.MinRuns, c.Tuner.Window)
	}
	return nil
}

// HistoryPath resolves the run history file location.
func (c Config) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// ParamsPath resolves the parameter file location.
func (c Config) ParamsPath() string {
	return c.resolve(c.ParamsFile)
}

// LedgerPath resolves an action-ledger file location by name.
func (c Config) LedgerPath(name string) string {
	return c.resolve(name + "_ledger.json")
}

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
