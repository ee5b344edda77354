package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonybot-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect colonybot configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (CB_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Example:
  colonybot config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}
			printConfig(cfg)
			return nil
		},
	}
}

func printConfig(cfg *config.Config) {
	fmt.Println("colonybot Configuration")
	fmt.Println("=======================")

	fmt.Println("\nDatabase:")
	fmt.Printf("  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Printf("  Path:             %s\n", cfg.Database.Path)
	default:
		fmt.Printf("  Host:             %s\n", cfg.Database.Host)
		fmt.Printf("  Port:             %d\n", cfg.Database.Port)
		fmt.Printf("  Database:         %s\n", cfg.Database.Name)
		fmt.Printf("  User:             %s\n", cfg.Database.User)
	}
	fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

	fmt.Println("\nSimulation:")
	fmt.Printf("  Scenario:         %s\n", valueOrUnset(cfg.Simulation.Scenario))
	fmt.Printf("  Tick Budget:      %s\n", cfg.Simulation.TickBudget)
	fmt.Printf("  Ticks (run):      %d\n", cfg.Simulation.Ticks)

	fmt.Println("\nDaemon:")
	fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
	fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
	fmt.Printf("  Tick Interval:    %s\n", cfg.Daemon.TickInterval)
	fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
	fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
	fmt.Printf("  Output:           %s\n", cfg.Logging.Output)
	fmt.Printf("  Persist:          %t\n", cfg.Logging.Persist)

	fmt.Println("\nMetrics:")
	fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
