package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colonybot-go/internal/adapters/sim"
	"github.com/andrescamacho/colonybot-go/internal/application/tick"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		scenario string
		ticks    int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a fixed number of ticks against a scenario",
		Long: `Load the scenario into the simulated world, process every agent once per tick
and print a per-tick summary followed by the final world state.

Agent memory persists in the configured database between runs.

Examples:
  colonybot run --scenario configs/scenarios/basic.yaml
  colonybot run --ticks 200 --quiet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if scenario != "" {
				cfg.Simulation.Scenario = scenario
			}
			if ticks > 0 {
				cfg.Simulation.Ticks = ticks
			}

			a, err := bootstrap(cmd.Context(), cfg, "run")
			if err != nil {
				return err
			}
			defer a.Close()

			return runTicks(a.Context(cmd.Context()), a, cfg.Simulation.Ticks, quiet)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario file (overrides simulation.scenario)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Number of ticks (overrides simulation.ticks)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the final state")

	return cmd
}

func runTicks(ctx context.Context, a *app, ticks int, quiet bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if !quiet {
		fmt.Fprintln(w, "Tick\tAgents\tProcessed\tCorrected\tNot Visible\tFailed\tSkipped\tDuration")
		fmt.Fprintln(w, "────\t──────\t─────────\t─────────\t───────────\t──────\t───────\t────────")
	}

	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		current := a.world.Tick() + 1
		a.logger.SetTick(current)

		resp, err := a.mediator.Send(ctx, &tick.RunTickCommand{Tick: current})
		if err != nil {
			w.Flush()
			return fmt.Errorf("tick %d failed: %w", current, err)
		}
		result := resp.(*tick.RunTickResponse)

		if !quiet {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
				result.Tick,
				result.Agents,
				result.Processed,
				result.Corrected,
				result.NotVisible,
				result.Failed,
				result.Skipped,
				result.Duration,
			)
		}
	}
	w.Flush()

	printStatus(a.world.Status())
	return nil
}

func printStatus(st sim.Status) {
	fmt.Printf("\nScenario %s after %d ticks\n", st.Scenario, st.Tick)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nRoom\tSource Energy\tStored Energy\tSites Left\tController")
	fmt.Fprintln(w, "────\t─────────────\t─────────────\t──────────\t──────────")
	for _, r := range st.Rooms {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\tL%d (%d)\n",
			r.Name, r.SourceEnergy, r.StoredEnergy, r.SitesRemaining, r.ControllerLevel, r.ControllerProgress)
	}

	fmt.Fprintln(w, "\nAgent\tPosition\tEnergy")
	fmt.Fprintln(w, "─────\t────────\t──────")
	for _, ag := range st.Agents {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\n", ag.Name, ag.Pos, ag.Energy, ag.Capacity)
	}
	w.Flush()
}
