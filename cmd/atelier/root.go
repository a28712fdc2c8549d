package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loomhq/atelier/pkg/config"
	"loomhq/atelier/pkg/schema"
	"loomhq/atelier/pkg/telemetry/logging"
	"loomhq/atelier/pkg/telemetry/metrics"
	"loomhq/atelier/pkg/website"
	"loomhq/atelier/pkg/website/journal"
	"loomhq/atelier/pkg/website/ops"
	"loomhq/atelier/pkg/website/paths"
	"loomhq/atelier/pkg/website/template"
	"loomhq/atelier/pkg/website/trash"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Atelier - website project core",
	Long: `Atelier manages website projects: it creates, renames, duplicates,
and deletes project trees as all-or-nothing transactions, and validates
website configuration against a modular, fragment-based schema.

Structural operations stage their full result out-of-place and commit it
with a single rename, so an interrupted operation never leaves a
half-written project behind.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "atelier.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// core bundles the wired components behind the CLI commands.
type core struct {
	cfg       *config.Config
	manager   *website.Manager
	cache     *schema.ResolutionCache
	trash     *trash.Store
	retention *trash.Scheduler
	journal   journal.Journal
}

// newCore loads configuration and wires the website project core.
func newCore(ctx context.Context) (*core, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	}); err != nil {
		return nil, err
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
	}

	policy, err := paths.New(cfg.Sites.Root, cfg.Sites.ContentRoot)
	if err != nil {
		return nil, err
	}

	trashStore, err := trash.NewStore(cfg.Trash.Root)
	if err != nil {
		return nil, err
	}

	var jnl journal.Journal
	if cfg.Journal.Path != "" {
		jnl, err = journal.NewSQLiteJournal(&journal.SQLiteConfig{
			Path:    cfg.Journal.Path,
			WALMode: true,
		})
		if err != nil {
			return nil, err
		}
	} else {
		jnl = journal.NewMemoryJournal()
	}

	var opMetrics ops.OperationMetrics
	var cacheMetrics schema.CacheMetrics
	if collector != nil {
		opMetrics = collector
		cacheMetrics = collector
	}

	opsManager, err := ops.NewManager(policy, trashStore, jnl, opMetrics)
	if err != nil {
		return nil, err
	}
	if err := opsManager.Recover(ctx); err != nil {
		return nil, err
	}

	cache := schema.NewResolutionCache()
	resolver := schema.NewResolver(schema.NewDocumentLoader(nil), cache, cacheMetrics)

	var templates template.Source
	if _, err := os.Stat(cfg.Sites.TemplatesRoot); err == nil {
		templates, err = template.NewDirSource(cfg.Sites.TemplatesRoot)
		if err != nil {
			return nil, err
		}
	}

	schemaRef := ""
	if _, err := os.Stat(cfg.Schema.Root); err == nil {
		schemaRef = cfg.Schema.Root
	}

	manager, err := website.NewManager(policy, resolver, opsManager, templates, schemaRef)
	if err != nil {
		return nil, err
	}

	return &core{
		cfg:       cfg,
		manager:   manager,
		cache:     cache,
		trash:     trashStore,
		retention: trash.NewScheduler(trashStore, &trash.RetentionConfig{
			RetentionDays: cfg.Trash.RetentionDays,
			PruneSchedule: cfg.Trash.PruneSchedule,
		}),
		journal: jnl,
	}, nil
}

// close releases the core's resources.
func (c *core) close() {
	if c.journal != nil {
		_ = c.journal.Close()
	}
}
