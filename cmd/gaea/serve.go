package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/cli"
	"github.com/aretw0/gaea/internal/presentation/tui"
	httpAdapter "github.com/aretw0/gaea/pkg/adapters/http"
	redisAdapter "github.com/aretw0/gaea/pkg/adapters/redis"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/observability"
	"github.com/aretw0/gaea/pkg/session"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview HTTP server",
	Long: `Serves mounted trees over a JSON API with SSE updates and Prometheus metrics.

With --watch, edits to the backend remount every open tree. With a Redis backend,
messages published under the bus prefix are relayed into every mount.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		limit, _ := cmd.Flags().GetInt("max-mounts")
		busPrefix, _ := cmd.Flags().GetString("bus-prefix")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		jumps := navigation.NewRecorder(100)

		a, err := setup(cli.EngineConfig{Hooks: metrics.Hooks(), Navigator: jumps})
		if err != nil {
			return err
		}
		defer a.Close()

		mounts := session.NewManager(a.engine, session.WithLimit(limit), session.WithLogger(a.logger))
		if err := metrics.WatchSubscriptions(mounts.Subscriptions); err != nil {
			return err
		}

		server := httpAdapter.NewServer(a.engine, mounts,
			httpAdapter.WithJumps(jumps),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
			httpAdapter.WithLogger(a.logger),
		)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if watch {
			go func() {
				if err := server.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.logger.Warn("Hot reload stopped", "error", err)
				}
			}()
		}
		if a.src.Redis != nil {
			bridge := redisAdapter.NewBridge(a.src.Redis.Client(), redisAdapter.PublisherFunc(server.PublishAll),
				redisAdapter.WithBusPrefix(busPrefix),
				redisAdapter.WithBridgeLogger(a.logger),
			)
			go func() {
				if err := bridge.Run(ctx); err != nil {
					a.logger.Warn("Redis bridge stopped", "error", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("Starting Gaea server", "addr", srv.Addr, "version", strings.TrimSpace(gaea.Version))
			serverErrors <- srv.ListenAndServe()
		}()
		if cli.IsTerminal(cmd.OutOrStdout()) {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
			a.logger.Info("Shutting down", "signal", ctx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				_ = srv.Close()
			}
		}

		if err := mounts.CloseAll(context.Background()); err != nil {
			a.logger.Warn("Failed to unmount every tree", "error", err)
		}
		a.logger.Info("Gaea server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("watch", "w", false, "Remount open trees when instances change")
	serveCmd.Flags().Int("max-mounts", 0, "Maximum concurrent mounts (0 means unlimited)")
	serveCmd.Flags().String("bus-prefix", redisAdapter.DefaultBusPrefix, "Redis channel prefix relayed into mounts")
}
