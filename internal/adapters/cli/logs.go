package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/database"
)

// NewLogsCommand creates the logs command
func NewLogsCommand() *cobra.Command {
	var (
		runID     string
		agentName string
		level     string
		since     time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show persisted tick logs",
		Long: `Retrieve tick log entries stored while logging.persist was enabled.

Examples:
  colonybot logs --agent harvester-1
  colonybot logs --run serve-basic-1a2b3c4d --level WARNING
  colonybot logs --since 10m --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			filter := persistence.TickLogFilter{
				RunID:     runID,
				AgentName: agentName,
				Level:     level,
				Limit:     limit,
			}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.Since = &from
			}

			logRepo := persistence.NewGormTickLogRepository(db, nil)
			logs, err := logRepo.GetLogs(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to get logs: %w", err)
			}

			if len(logs) == 0 {
				fmt.Println("No logs found")
				return nil
			}

			// Display logs in reverse order (oldest first)
			for i := len(logs) - 1; i >= 0; i-- {
				log := logs[i]
				agentLabel := log.AgentName
				if agentLabel == "" {
					agentLabel = "-"
				}
				fmt.Printf("[%s] [%s] tick=%d %s: %s\n",
					log.Timestamp.Format("2006-01-02 15:04:05"),
					log.Level,
					log.Tick,
					agentLabel,
					log.Message,
				)
			}

			fmt.Printf("\nTotal: %d log entries\n", len(logs))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Filter by run ID")
	cmd.Flags().StringVar(&agentName, "agent", "", "Filter by agent name")
	cmd.Flags().StringVar(&level, "level", "", "Filter by log level (DEBUG, INFO, WARNING, ERROR)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this (e.g. 15m)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of log entries")

	return cmd
}
