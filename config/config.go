// Package config loads the courtsched configuration from a YAML or JSON file
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/courtsched/core/metrics"
	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/scheduler"
	"github.com/kilianp07/courtsched/infra/mqtt"
	"github.com/kilianp07/courtsched/infra/runlog"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: COURTSCHED_SCHEDULER__DURATION_SECONDS=60.
const EnvPrefix = "COURTSCHED_"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "courtsched.yaml"

type Config struct {
	Scheduler   scheduler.Config  `json:"scheduler"`
	Input       InputConfig       `json:"input"`
	Output      OutputConfig      `json:"output"`
	Preferences PreferencesConfig `json:"preferences"`
	Logging     runlog.Config     `json:"logging"`
	Metrics     metrics.Config    `json:"metrics"`
	MQTT        mqtt.Config       `json:"mqtt"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg := Config{Scheduler: scheduler.DefaultConfig()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields of every section.
func (c *Config) SetDefaults() {
	c.Scheduler.SetDefaults()
	c.Input.SetDefaults()
	c.Output.SetDefaults()
	c.Preferences.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Preferences.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %v", model.ErrInvalidConfig, err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	return nil
}

// Load reads path, applies environment overrides and validates the result.
// An empty path loads defaults and environment overrides only. Keys absent
// from the file keep their default values, so penalties may be set to zero.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("%w: unsupported config format: %s", model.ErrInvalidConfig, ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("%w: load %s: %v", model.ErrInvalidConfig, path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Config{Scheduler: scheduler.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
