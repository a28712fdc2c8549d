package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate NAME NEW",
	Short: "Duplicate a website project under a new name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		result, err := c.manager.DuplicateWebsite(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("duplicated %s as %s at %s\n", result.Identity, result.TargetIdentity, result.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
}
