package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
	"github.com/aretw0/gaea/internal/compiler"
	"github.com/aretw0/gaea/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the instance tree for consistency",
	Long:  `Walks the tree from the root instance and reports missing instances, cycles, unregistered components and suspicious events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		a, err := setup(cli.EngineConfig{})
		if err != nil {
			return err
		}
		defer a.Close()

		root, err := a.rootKey()
		if err != nil {
			return err
		}

		report := validator.ValidateTree(a.engine.Loader(), compiler.NewParser(), a.engine.Registry(), root)
		out := cmd.OutOrStdout()
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if strict && len(report.Warnings) > 0 {
			return fmt.Errorf("validation failed: %d warnings in strict mode", len(report.Warnings))
		}
		fmt.Fprintf(out, "Tree %q is valid (%d instances) ✅\n", root, len(report.Visited))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
