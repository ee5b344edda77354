package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/database"
)

// NewMemoryCommand creates the memory command with subcommands
func NewMemoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit persisted agent memory",
		Long: `Inspect and edit the per-agent memory the controller reads every tick.

Examples:
  colonybot memory list
  colonybot memory get harvester-1
  colonybot memory set-task harvester-1 build
  colonybot memory reset harvester-1`,
	}

	cmd.AddCommand(newMemoryListCommand())
	cmd.AddCommand(newMemoryGetCommand())
	cmd.AddCommand(newMemorySetTaskCommand())
	cmd.AddCommand(newMemoryResetCommand())

	return cmd
}

// withMemory opens the database and runs fn against the memory repository
func withMemory(fn func(repo *persistence.GormAgentMemoryRepository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(persistence.NewGormAgentMemoryRepository(db, nil))
}

func newMemoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents with stored memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(func(repo *persistence.GormAgentMemoryRepository) error {
				ctx := cmd.Context()
				names, err := repo.Agents(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Println("No agent memory stored")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "Agent\tTask\tGathering")
				fmt.Fprintln(w, "─────\t────\t─────────")
				for _, name := range names {
					task, gathering := describeState(ctx, repo, name)
					fmt.Fprintf(w, "%s\t%s\t%s\n", name, task, gathering)
				}
				return w.Flush()
			})
		},
	}
}

func newMemoryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <agent>",
		Short: "Show every stored field of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(func(repo *persistence.GormAgentMemoryRepository) error {
				fields, err := repo.Fields(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(fields) == 0 {
					fmt.Println("No memory stored for agent:", args[0])
					return nil
				}

				task, gathering := describeState(cmd.Context(), repo, args[0])
				fmt.Printf("Agent %s: task=%s gathering=%s\n\n", args[0], task, gathering)
				return printFields(os.Stdout, fields)
			})
		},
	}
}

func newMemorySetTaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-task <agent> <task>",
		Short: "Assign a task (idle, conquer, harvest, build)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := agent.ParseTask(args[1])
			if err != nil {
				return err
			}
			return withMemory(func(repo *persistence.GormAgentMemoryRepository) error {
				if err := repo.SetInt(cmd.Context(), args[0], agent.FieldActivity, task.Code()); err != nil {
					return err
				}
				fmt.Printf("✓ %s now has task %s (code %d)\n", args[0], task, task.Code())
				return nil
			})
		},
	}
}

func newMemoryResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <agent>",
		Short: "Delete all stored memory of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemory(func(repo *persistence.GormAgentMemoryRepository) error {
				removed, err := repo.Clear(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("✓ Removed %d fields of %s\n", removed, args[0])
				return nil
			})
		},
	}
}

// describeState renders the decoded task and phase, marking unusable values
func describeState(ctx context.Context, memory agent.Memory, name string) (string, string) {
	task := "(unset)"
	if code, found, err := memory.Int(ctx, name, agent.FieldActivity); err != nil {
		task = "(corrupt)"
	} else if found {
		if decoded, ok := agent.DecodeTask(code); ok {
			task = decoded.String()
		} else {
			task = fmt.Sprintf("(invalid code %d)", code)
		}
	}

	gathering := "(unset)"
	if value, found, err := memory.Bool(ctx, name, agent.FieldGathering); err != nil {
		gathering = "(corrupt)"
	} else if found {
		gathering = fmt.Sprintf("%t", value)
	}

	return task, gathering
}

func printFields(out io.Writer, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Field\tValue")
	fmt.Fprintln(w, "─────\t─────")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, fields[k])
	}
	return w.Flush()
}
