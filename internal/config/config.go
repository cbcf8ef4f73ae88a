package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/BarrensZeppelin/effects"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the project-level configuration file, relative to the
// working directory.
const ProjectFile = ".effects.yaml"

// Config holds the settings of an analysis run.
type Config struct {
	// LogPath is the constraint log written by the run.
	LogPath string `yaml:"log_path" env:"EFFECTS_LOG"`

	// Propagation is "fixpoint" or "single-pass".
	Propagation string `yaml:"propagation" env:"EFFECTS_PROPAGATION"`

	// SharedLog appends to an existing log instead of truncating it, for
	// runs split over several processes.
	SharedLog bool `yaml:"shared_log" env:"EFFECTS_SHARED_LOG"`

	// SnapshotPath, if set, receives a MessagePack snapshot of the
	// computed relations.
	SnapshotPath string `yaml:"snapshot_path" env:"EFFECTS_SNAPSHOT"`

	// Tests includes test packages when loading.
	Tests bool `yaml:"tests" env:"EFFECTS_TESTS"`

	Verbose bool `yaml:"verbose" env:"EFFECTS_VERBOSE"`
}

func DefaultConfig() *Config {
	return &Config{
		LogPath:     effects.DefaultLogPath,
		Propagation: effects.FixedPoint.String(),
	}
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.effects.yaml)
// 3. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(ProjectFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", ProjectFile, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides sets every field whose env tag names a non-empty
// variable. Booleans that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := t.Field(i).Tag.Lookup("env")
		if !ok {
			continue
		}
		value := os.Getenv(name)
		if value == "" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Bool:
			if b, err := strconv.ParseBool(value); err == nil {
				field.SetBool(b)
			}
		default:
			panic(fmt.Errorf("config field %s has unsupported kind %v", t.Field(i).Name, field.Kind()))
		}
	}
}

func (c *Config) Validate() error {
	if c.LogPath == "" {
		return fmt.Errorf("log_path must not be empty")
	}
	if _, err := effects.ParsePropagation(c.Propagation); err != nil {
		return fmt.Errorf("invalid propagation: %w", err)
	}
	return nil
}

// SessionOptions returns the options for a session writing to the
// configured log.
func (c *Config) SessionOptions() (effects.Options, error) {
	mode, err := effects.ParsePropagation(c.Propagation)
	if err != nil {
		return effects.Options{}, err
	}

	return effects.Options{
		Sink:        effects.NewFileSink(c.LogPath, c.SharedLog),
		Propagation: mode,
		Verbose:     c.Verbose,
	}, nil
}
