package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [NAME]",
	Short: "Validate a website configuration against the schema",
	Long: `Validate a website's configuration file against the resolved schema.
With --file, validates a configuration file directly instead of a
website's stored configuration. Every violation is reported, not just
the first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCore(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		var config map[string]any
		switch {
		case validateFile != "":
			data, err := os.ReadFile(validateFile)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("failed to parse %q: %w", validateFile, err)
			}
		case len(args) == 1:
			config, err = c.manager.ReadConfiguration(cmd.Context(), args[0])
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("either a website name or --file is required")
		}

		result, err := c.manager.ValidateConfiguration(config)
		if err != nil {
			return err
		}
		if !result.Valid() {
			fmt.Println(result.String())
			os.Exit(1)
		}

		fmt.Println("valid")
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "configuration file to validate")
	rootCmd.AddCommand(validateCmd)
}
