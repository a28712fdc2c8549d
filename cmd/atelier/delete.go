package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a website project",
	Long: `Delete a website project. The project tree is moved to the trash,
from which it can be recovered until retention removes it permanently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		result, err := c.manager.DeleteWebsite(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("deleted %s (recoverable at %s)\n", result.Identity, result.TrashPath)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Permanently remove expired trash entries now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		age := retentionAge(c.cfg.Trash.RetentionDays)
		if age == 0 {
			fmt.Println("retention disabled, nothing pruned")
			return nil
		}
		removed, err := c.trash.Purge(age)
		if err != nil {
			return err
		}

		fmt.Printf("pruned %d trash entries\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(pruneCmd)
}
