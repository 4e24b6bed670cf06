package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/rover/internal/adapters/sim"
	"github.com/aretw0/rover/internal/compiler"
	"github.com/aretw0/rover/pkg/catalog"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <routine>",
	Short: "Check a routine for errors",
	Long:  `Compiles the routine and reports diagnostics without running it. Exits non-zero on a fatal error.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Routine is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Validate against the built-in commands; custom hosts may register more.
	// Handlers never run during compilation, so a simulated actuator is all
	// the registration needs.
	cat := catalog.New()
	catalog.RegisterBuiltins(cat, sim.New())

	routine, diags, err := compiler.New(cat).Compile(path, string(source))
	if err != nil {
		var cerr *domain.CompileError
		if errors.As(err, &cerr) {
			for _, d := range cerr.Diagnostics {
				fmt.Printf("  line %d: %s\n", d.Line, d.Message)
			}
		}
		return err
	}

	for _, d := range diags {
		fmt.Printf("  warning, line %d: %s\n", d.Line, d.Message)
	}
	fmt.Printf("Compiled %d components (%d points, %d labels).\n",
		routine.Len(), len(routine.Points()), len(routine.Labels))
	return nil
}
