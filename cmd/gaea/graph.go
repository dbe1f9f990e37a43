package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
	"github.com/aretw0/gaea/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the instance tree as a Mermaid diagram",
	Long:  `Inspects every instance and prints a Mermaid flowchart (graph TD) of children, sibling data flow, subscriptions and jumps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mounted, _ := cmd.Flags().GetBool("mounted")

		a, err := setup(cli.EngineConfig{})
		if err != nil {
			return err
		}
		defer a.Close()

		instances, err := a.engine.Inspect()
		if err != nil {
			return fmt.Errorf("error inspecting instances: %w", err)
		}

		var overlay *graph.GraphOverlay
		if mounted {
			key, err := a.rootKey()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			root, err := a.engine.Instantiate(ctx, key)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{MountedInstances: root.Mounted(), RootInstance: key}
			_ = root.Unmount(context.WithoutCancel(ctx))
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(instances, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("mounted", false, "Mount the root and highlight the instances it reaches")
}
