package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Mount the tree and print the rendered elements",
	Long: `Mounts the root instance, applies the requested interactions and prints the element tree.
On a terminal the tree is shown as a styled outline; otherwise it is written as JSON.

Interactions run in order: every --publish first, then every --invoke.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		publishes, _ := cmd.Flags().GetStringArray("publish")
		invokes, _ := cmd.Flags().GetStringArray("invoke")
		watch, _ := cmd.Flags().GetBool("watch")

		a, err := setup(cli.EngineConfig{})
		if err != nil {
			return err
		}
		defer a.Close()

		root, err := a.rootKey()
		if err != nil {
			return err
		}

		ro := cli.RenderOptions{Root: root, Format: format}
		for _, p := range publishes {
			ro.Steps = append(ro.Steps, cli.Interaction{Publish: p})
		}
		for _, i := range invokes {
			ro.Steps = append(ro.Steps, cli.Interaction{Invoke: i})
		}

		if watch {
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()
			return cli.Watch(ctx, a.engine, cmd.OutOrStdout(), ro, a.logger)
		}
		return cli.Render(cmd.Context(), a.engine, cmd.OutOrStdout(), ro)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("format", cli.FormatAuto, "Output format: auto, outline or json")
	renderCmd.Flags().StringArray("publish", nil, "Publish channel[=payload] before printing (repeatable)")
	renderCmd.Flags().StringArray("invoke", nil, "Invoke instance.field before printing (repeatable)")
	renderCmd.Flags().BoolP("watch", "w", false, "Re-render whenever instances change")
}
