package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridden at build time with
// -ldflags "-X main.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the atelier version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atelier %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
