package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	if cfg.Sites.Root == "" {
		return fmt.Errorf("sites.root must not be empty")
	}
	if cfg.Sites.ContentRoot == "" {
		return fmt.Errorf("sites.content_root must not be empty")
	}
	if strings.ContainsAny(cfg.Sites.ContentRoot, "/\\") {
		return fmt.Errorf("sites.content_root %q must be a single path segment", cfg.Sites.ContentRoot)
	}
	if cfg.Trash.Root == "" {
		return fmt.Errorf("trash.root must not be empty")
	}
	if cfg.Trash.RetentionDays < 0 {
		return fmt.Errorf("trash.retention_days must not be negative")
	}
	if cfg.Trash.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Trash.PruneSchedule); err != nil {
			return fmt.Errorf("trash.prune_schedule %q is not a valid cron expression: %w", cfg.Trash.PruneSchedule, err)
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format %q is not one of json, text", cfg.Logging.Format)
	}
	return nil
}
