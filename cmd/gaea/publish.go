package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
	redisAdapter "github.com/aretw0/gaea/pkg/adapters/redis"
)

var publishCmd = &cobra.Command{
	Use:   "publish <channel> [payload]",
	Short: "Publish a message to running servers through Redis",
	Long: `Sends a message on the Redis bus that "gaea serve --redis" relays into every mount,
firing the instances subscribed to the channel. Payloads that parse as JSON are sent as JSON.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.Redis == "" {
			return fmt.Errorf("publish requires --redis")
		}
		busPrefix, _ := cmd.Flags().GetString("bus-prefix")

		client, err := cli.RedisClient(opts.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		var payload any
		if len(args) == 2 {
			payload = cli.DecodePayload(args[1])
		}
		bridge := redisAdapter.NewBridge(client, nil, redisAdapter.WithBusPrefix(busPrefix))
		if err := bridge.Send(cmd.Context(), args[0], payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published to %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("bus-prefix", redisAdapter.DefaultBusPrefix, "Redis channel prefix the servers relay")
}
