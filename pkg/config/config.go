// Package config defines the application configuration for the website
// project core: where projects, schemas, trash, and the operation journal
// live, plus logging and metrics settings.
package config

// Config is the root application configuration.
type Config struct {
	Sites   SitesConfig   `yaml:"sites"`
	Schema  SchemaConfig  `yaml:"schema"`
	Trash   TrashConfig   `yaml:"trash"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SitesConfig locates website projects on disk.
type SitesConfig struct {
	// Root is the directory that holds every website project.
	Root string `yaml:"root"`

	// ContentRoot is the fixed content subtree segment inside each
	// project.
	ContentRoot string `yaml:"content_root"`

	// TemplatesRoot is the directory of named website templates.
	TemplatesRoot string `yaml:"templates_root"`
}

// SchemaConfig locates the configuration schema.
type SchemaConfig struct {
	// Root is the path of the root schema document.
	Root string `yaml:"root"`

	// Watch enables the fragment watcher that purges the resolution
	// cache when schema files change.
	Watch bool `yaml:"watch"`
}

// TrashConfig controls deleted-project retention.
type TrashConfig struct {
	// Root is the trash directory.
	Root string `yaml:"root"`

	// RetentionDays is how long deleted projects are kept before
	// permanent removal. 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// JournalConfig controls the operation journal.
type JournalConfig struct {
	// Path is the SQLite journal file. Empty selects the in-memory
	// journal.
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Sites.Root == "" {
		cfg.Sites.Root = "sites"
	}
	if cfg.Sites.ContentRoot == "" {
		cfg.Sites.ContentRoot = "sources"
	}
	if cfg.Sites.TemplatesRoot == "" {
		cfg.Sites.TemplatesRoot = "templates"
	}
	if cfg.Schema.Root == "" {
		cfg.Schema.Root = "schemas/site.json"
	}
	if cfg.Trash.Root == "" {
		cfg.Trash.Root = "trash"
	}
	if cfg.Trash.RetentionDays == 0 {
		cfg.Trash.RetentionDays = 30
	}
	if cfg.Trash.PruneSchedule == "" {
		cfg.Trash.PruneSchedule = "0 3 * * *"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
