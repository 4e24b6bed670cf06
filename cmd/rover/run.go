package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rover/internal/cli"
	"github.com/aretw0/rover/internal/config"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [routine]",
	Short: "Execute a routine against the simulated world",
	Long:  `Compiles the routine, hydrates its learned layout from the store, and runs the engine until interrupted.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := buildRunOptions(cmd, args)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		watchMode, _ := cmd.Flags().GetBool("watch")

		runFn := cli.RunSession
		if watchMode {
			runFn = cli.RunWatch
		}
		if err := runFn(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("store", "", "Layout store backend (file, memory, redis, sqlite)")
	runCmd.Flags().String("store-path", "", "Base directory (file) or database file (sqlite)")
	runCmd.Flags().String("store-addr", "", "Redis address")
	runCmd.Flags().String("serve", "", "Listen address for the HTTP control server")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")
}

func buildRunOptions(cmd *cobra.Command, args []string) (cli.RunOptions, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configPath)
	if err != nil {
		return cli.RunOptions{}, err
	}

	// Flags override the file.
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Backend = v
	}
	if v, _ := cmd.Flags().GetString("store-path"); v != "" {
		cfg.Store.Path = v
	}
	if v, _ := cmd.Flags().GetString("store-addr"); v != "" {
		cfg.Store.Addr = v
	}
	if v, _ := cmd.Flags().GetString("serve"); v != "" {
		cfg.Serve = v
	}

	routine := cfg.Routine
	if len(args) > 0 {
		routine = args[0]
	}
	if routine == "" {
		return cli.RunOptions{}, fmt.Errorf("no routine: pass a path or set 'routine' in %s", configPath)
	}

	return cli.RunOptions{Config: cfg, Routine: routine, Debug: debug}, nil
}
