package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	daemon "github.com/andrescamacho/colonybot-go/internal/adapters/grpc"
	"github.com/andrescamacho/colonybot-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/pidfile"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		scenario string
		maxTicks int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tick loop as a daemon",
		Long: `Run ticks continuously, one per daemon.tick_interval, until interrupted.

The daemon holds a PID file, serves the gRPC health service on daemon.socket_path
and, when metrics.enabled is set, a Prometheus endpoint.

Examples:
  colonybot serve
  colonybot serve --scenario configs/scenarios/basic.yaml --max-ticks 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if scenario != "" {
				cfg.Simulation.Scenario = scenario
			}

			pf := pidfile.New(cfg.Daemon.PIDFile)
			if err := pf.Acquire(); err != nil {
				return fmt.Errorf("failed to acquire PID file lock: %w", err)
			}
			defer pf.Release()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, maxTicks)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario file (overrides simulation.scenario)")
	cmd.Flags().Int64Var(&maxTicks, "max-ticks", 0, "Stop after this many ticks (0 runs until interrupted)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, maxTicks int64) error {
	a, err := bootstrap(ctx, cfg, "serve")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = a.Context(ctx)
	logger := logging.LoggerFromContext(ctx)

	server, err := daemon.NewDaemonServer(cfg.Daemon.SocketPath)
	if err != nil {
		return err
	}
	serverErrs := server.Start()
	defer server.Stop()

	var metricsErrs <-chan error
	if cfg.Metrics.Enabled {
		metricsServer, err := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			return err
		}
		metricsErrs = metricsServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	loop := daemon.NewTickLoop(a.mediator, cfg.Daemon.TickInterval, maxTicks)
	loop.OnTick(a.logger.SetTick)
	loop.OnHealthChange(server.SetServing)
	if err := loop.Start(ctx); err != nil {
		return err
	}

	logger.Log(logging.LevelInfo, "Daemon started", map[string]interface{}{
		"socket":        server.Addr(),
		"tick_interval": cfg.Daemon.TickInterval.String(),
		"metrics":       cfg.Metrics.Enabled,
	})

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Log(logging.LevelInfo, "Shutdown signal received", nil)
	case <-loop.Done():
	case err, ok := <-serverErrs:
		if ok {
			serveErr = err
		}
	case err, ok := <-metricsErrs:
		if ok {
			serveErr = fmt.Errorf("metrics server error: %w", err)
		}
	}

	if err := loop.Stop(cfg.Daemon.ShutdownTimeout); err != nil {
		logger.Log(logging.LevelError, "Tick loop did not stop cleanly", map[string]interface{}{"error": err.Error()})
	}

	status, runtime := loop.Status()
	logger.Log(logging.LevelInfo, "Daemon stopped", map[string]interface{}{
		"ticks":   loop.Tick(),
		"status":  string(status),
		"runtime": runtime.String(),
	})
	return serveErr
}
