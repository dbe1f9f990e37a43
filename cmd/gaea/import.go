package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
	redisAdapter "github.com/aretw0/gaea/pkg/adapters/redis"
	"github.com/aretw0/gaea/pkg/ports"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy instances from the selected backend into another one",
	Long: `Reads every instance from --dir, --file, --redis or --bolt and writes it into the target.
Records are validated before anything is written. Imports into Redis hold a distributed lock.
Sample data can be masked with --redact and records encrypted with --to-encryption-key.`,
	Example: `  gaea import --file tree.yaml --to-redis localhost:6379
  gaea import --dir ./instances --to-bolt preview.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		toRedis, _ := cmd.Flags().GetString("to-redis")
		toBolt, _ := cmd.Flags().GetString("to-bolt")
		toFile, _ := cmd.Flags().GetString("to-file")
		toKey, _ := cmd.Flags().GetString("to-encryption-key")
		redact, _ := cmd.Flags().GetStringArray("redact")

		target := cli.Options{Redis: toRedis, Bolt: toBolt, File: toFile, EncryptionKey: toKey, Redact: redact}
		dst, err := target.Open()
		if err != nil {
			return err
		}
		defer dst.Close()
		if dst.Store == nil {
			return fmt.Errorf("one of --to-redis, --to-bolt or --to-file is required")
		}

		a, err := setup(cli.EngineConfig{})
		if err != nil {
			return err
		}
		defer a.Close()

		var locker ports.Locker
		if dst.Redis != nil {
			locker = redisAdapter.NewLocker(dst.Redis.Client(), redisAdapter.DefaultPrefix)
		}

		n, err := cli.Import(cmd.Context(), a.engine.Loader(), dst.Store, locker, a.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d instances\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("to-redis", "", "Target Redis address or URL")
	importCmd.Flags().String("to-bolt", "", "Target bbolt database")
	importCmd.Flags().String("to-file", "", "Target YAML or JSON tree document")
	importCmd.Flags().String("to-encryption-key", "", "Base64 AES-256 key to encrypt records written to the target")
	importCmd.Flags().StringArray("redact", nil, "Regexp of prop keys to mask in the target (repeatable)")
}
