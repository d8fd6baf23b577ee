package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/profiled/internal/trigger"
)

// Config holds the optional YAML configuration file contents.
type Config struct {
	// Database is the SQLite database path. The --db flag overrides it.
	Database string `yaml:"database,omitempty"`
	// Clock selects how trigger times are rendered and stored: "24h" or
	// "12h". Defaults to 24h.
	Clock string `yaml:"clock,omitempty"`
}

// DefaultDatabase is used when neither the --db flag nor the config file
// names a database path.
const DefaultDatabase = "profiled.db"

// LoadConfig reads the YAML config at path. An empty path yields the
// zero config; a missing or malformed file is a command error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Clock != "" && !trigger.ClockMode(cfg.Clock).Valid() {
		return cfg, fmt.Errorf("invalid clock %q: must be %q or %q", cfg.Clock, trigger.Clock24, trigger.Clock12)
	}
	return cfg, nil
}

// DatabasePath resolves the database path from flag, config, default.
func (c Config) DatabasePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabase
}

// ClockMode resolves the configured clock mode.
func (c Config) ClockMode() trigger.ClockMode {
	if c.Clock == "" {
		return trigger.Clock24
	}
	return trigger.ClockMode(c.Clock)
}
