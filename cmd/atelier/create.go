package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createTemplate string

var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new website project",
	Long: `Create a new website project from a template. The project tree is
staged and verified before it becomes visible; a failed create leaves
nothing behind.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		result, err := c.manager.CreateWebsite(cmd.Context(), args[0], createTemplate)
		if err != nil {
			return err
		}

		fmt.Printf("created %s at %s\n", result.Identity, result.Path)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "template name")
	rootCmd.AddCommand(createCmd)
}
