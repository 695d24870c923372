package config

import (
	"fmt"
	"os"
	"strconv"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/simulator"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Scenarios []simulator.Scenario `yaml:"scenarios"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Output struct {
		CSVDir string `yaml:"csv_dir"`
	} `yaml:"output"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Schedule struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"schedule"`
}

// DefaultScenarios are the two classroom exercises the simulator generalizes.
func DefaultScenarios() []simulator.Scenario {
	return []simulator.Scenario{
		{
			Name:              "water-tank",
			Mode:              model.ModeReplenishment,
			CapacityMax:       200,
			Available:         200,
			WithdrawalPerStep: 25,
			Replenish: simulator.ReplenishPolicy{
				Probability:   30,
				Min:           10,
				Max:           40,
				LowWaterMark:  50,
				CapAtCapacity: true,
			},
			SafetyLimitSteps: 20,
			Seed:             1,
		},
		{
			Name:              "troop-deployment",
			Mode:              model.ModeTarget,
			CapacityMax:       500,
			Available:         500,
			WithdrawalPerStep: 60,
			Target:            350,
		},
		{
			Name:              "troop-reserve",
			Mode:              model.ModeDepletion,
			CapacityMax:       500,
			Available:         500,
			WithdrawalPerStep: 60,
			MinimumThreshold:  100,
		},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	// Defaults
	if len(cfg.Scenarios) == 0 {
		cfg.Scenarios = DefaultScenarios()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CYCLESIM_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CYCLESIM_CSV_DIR"); v != "" {
		c.Output.CSVDir = v
	}
	if v := os.Getenv("CYCLESIM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CYCLESIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CYCLESIM_SEED: %w", err)
		}
		c.Schedule.Seed = seed
	}
	return nil
}

// Validate checks every scenario and rejects duplicate names.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Scenarios))
	for _, sc := range c.Scenarios {
		if err := sc.Validate(); err != nil {
			return err
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}

// Scenario looks up a scenario by name.
func (c *Config) Scenario(name string) (simulator.Scenario, bool) {
	for _, sc := range c.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return simulator.Scenario{}, false
}

// WriteYAML saves the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
