package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/cli"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:           "gaea",
	Short:         "Gaea renders headless component instance trees",
	Long:          `Gaea mounts trees of component instances, wires their events and previews the result from a terminal, over HTTP or to MCP agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Dir, "dir", ".", "Directory of instance documents (Loam)")
	flags.StringVar(&opts.File, "file", "", "Single YAML or JSON tree document")
	flags.StringVar(&opts.Redis, "redis", "", "Redis address or URL holding instances")
	flags.StringVar(&opts.Bolt, "bolt", "", "bbolt database holding instances")
	flags.StringVar(&opts.Root, "root", "", "Root instance key (discovered when empty)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&opts.Openers, "openers", "", "YAML or JSON file of commands that open jump URLs")
	flags.StringVar(&opts.EncryptionKey, "encryption-key", os.Getenv("GAEA_ENCRYPTION_KEY"), "Base64 AES-256 key of an encrypted backend")
}

// app is what every command needs: an opened backend, a logger and an engine.
type app struct {
	src    *cli.Source
	logger *slog.Logger
	engine *gaea.Engine
}

func (a *app) Close() error {
	return a.src.Close()
}

// rootKey resolves the root instance from --root or the backend.
func (a *app) rootKey() (string, error) {
	return cli.ResolveRoot(a.engine, opts.Root, a.src.Root)
}

func setup(cfg cli.EngineConfig) (*app, error) {
	logger, err := opts.Logger()
	if err != nil {
		return nil, err
	}
	src, err := opts.Open()
	if err != nil {
		return nil, err
	}
	eng, err := cli.NewEngine(opts, src, logger, cfg)
	if err != nil {
		src.Close()
		return nil, err
	}
	return &app{src: src, logger: logger, engine: eng}, nil
}
