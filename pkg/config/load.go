package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults and environment variable overrides, and validates the
// result. Environment variables use the ATELIER_SECTION_FIELD naming
// convention (e.g. ATELIER_SITES_ROOT) and always take precedence over
// file-based configuration. A missing file is not an error: defaults and
// environment apply.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies ATELIER_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	overrideString("ATELIER_SITES_ROOT", &cfg.Sites.Root)
	overrideString("ATELIER_SITES_CONTENT_ROOT", &cfg.Sites.ContentRoot)
	overrideString("ATELIER_SITES_TEMPLATES_ROOT", &cfg.Sites.TemplatesRoot)
	overrideString("ATELIER_SCHEMA_ROOT", &cfg.Schema.Root)
	overrideBool("ATELIER_SCHEMA_WATCH", &cfg.Schema.Watch)
	overrideString("ATELIER_TRASH_ROOT", &cfg.Trash.Root)
	overrideInt("ATELIER_TRASH_RETENTION_DAYS", &cfg.Trash.RetentionDays)
	overrideString("ATELIER_TRASH_PRUNE_SCHEDULE", &cfg.Trash.PruneSchedule)
	overrideString("ATELIER_JOURNAL_PATH", &cfg.Journal.Path)
	overrideString("ATELIER_LOGGING_LEVEL", &cfg.Logging.Level)
	overrideString("ATELIER_LOGGING_FORMAT", &cfg.Logging.Format)
	overrideBool("ATELIER_METRICS_ENABLED", &cfg.Metrics.Enabled)
}

func overrideString(name string, target *string) {
	if value, ok := os.LookupEnv(name); ok {
		*target = value
	}
}

func overrideBool(name string, target *bool) {
	if value, ok := os.LookupEnv(name); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideInt(name string, target *int) {
	if value, ok := os.LookupEnv(name); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}
