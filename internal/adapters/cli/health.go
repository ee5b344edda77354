package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	daemon "github.com/andrescamacho/colonybot-go/internal/adapters/grpc"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/pidfile"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and its tick loop is serving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := daemon.NewHealthClient(cfg.Daemon.SocketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			status, err := client.Check(ctx)
			if err != nil {
				return err
			}

			if status == "SERVING" {
				fmt.Println("✓ Daemon is healthy")
			} else {
				fmt.Println("✗ Daemon is not serving")
			}
			fmt.Printf("  Status:  %s\n", status)
			fmt.Printf("  Socket:  %s\n", cfg.Daemon.SocketPath)
			if pid, running := pidfile.New(cfg.Daemon.PIDFile).Running(); running {
				fmt.Printf("  PID:     %d\n", pid)
			}

			if status != "SERVING" {
				return fmt.Errorf("daemon status %s", status)
			}
			return nil
		},
	}

	return cmd
}
