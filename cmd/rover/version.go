package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/rover"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rover",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rover version %s\n", strings.TrimSpace(rover.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
