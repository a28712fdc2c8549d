package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path NAME [RELATIVE]",
	Short: "Print a website's canonical project root or a content path",
	Long: `Print the canonical project root for a website name, or, with a
second argument, the absolute path of a project-relative content file
after path policy normalization.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		if len(args) == 1 {
			root, err := c.manager.GetWebsitePath(args[0])
			if err != nil {
				return err
			}
			fmt.Println(root)
			return nil
		}

		resolved, err := c.manager.ContentPath(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(resolved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
