package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colonybot",
		Short: "colonybot - per-tick behavior controller for colony agents",
		Long: `colonybot drives harvesting, building and upgrading agents one tick at a time.
Agent state lives in the configured database; the world is simulated from a YAML scenario.

Examples:
  colonybot run --scenario configs/scenarios/basic.yaml --ticks 50
  colonybot serve
  colonybot health
  colonybot memory set-task harvester-1 build
  colonybot logs --agent harvester-1 --level WARNING`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: search ./config.yaml, ./configs, /etc/colonybot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewMemoryCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
