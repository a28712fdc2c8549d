package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loomhq/atelier/pkg/schema"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the schema watcher and trash retention until interrupted",
	Long: `Run the long-lived background services: the schema fragment watcher,
which purges the resolution cache when schema files change, and the
trash retention scheduler, which permanently removes expired trash
entries on a cron schedule.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := c.retention.Start(ctx); err != nil {
			return err
		}
		defer c.retention.Stop()

		if c.cfg.Schema.Watch {
			schemaDir := schemaDirOf(c.cfg.Schema.Root)
			watcher, err := schema.NewFragmentWatcher(c.cache, &schema.FragmentWatcherConfig{
				Path:             schemaDir,
				DebounceInterval: 100 * time.Millisecond,
				Extensions:       []string{".json"},
			})
			if err != nil {
				return err
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}()
			defer watcher.Stop()
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
