package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a website project",
	Long: `Rename a website project. The renamed tree is staged as a copy and
committed under the new name; the old tree is preserved in the trash
until retention removes it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		result, err := c.manager.RenameWebsite(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("renamed %s to %s at %s\n", result.Identity, result.TargetIdentity, result.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
