package runlog

import "fmt"

// Config selects the journal backend.
type Config struct {
	// Backend is jsonl, sqlite or none.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "courtsched_runs.db"
		default:
			c.Path = "courtsched_runs.jsonl"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 90
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "none":
		return nil
	default:
		return fmt.Errorf("unknown run journal backend %q", c.Backend)
	}
}

// Open returns the store selected by cfg.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "none":
		return NopStore{}, nil
	default:
		return NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
}
