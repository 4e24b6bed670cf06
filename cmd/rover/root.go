package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rover",
	Short: "Rover is a waypoint routine engine",
	Long:  `Rover compiles waypoint routines, learns the terrain as it moves, and executes them on a tick loop.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "rover.yaml", "Path to the config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
