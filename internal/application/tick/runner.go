package tick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/colonybot-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonybot-go/internal/application/behavior"
	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// Advancer ends a tick in the world engine. The hosted world advances on its
// own and needs none.
type Advancer interface {
	Advance()
}

// RunTickCommand processes every agent once
type RunTickCommand struct {
	Tick int64
}

// RunTickResponse summarizes one tick
type RunTickResponse struct {
	Tick       int64
	Agents     int
	Processed  int
	Corrected  int
	NotVisible int
	Failed     int
	// Skipped agents were not reached before the tick budget ran out
	Skipped  int
	Duration time.Duration
}

// Runner is the outer control loop: it sends one ProcessAgentCommand per
// agent, sequentially, and keeps one failing agent from affecting the rest.
type Runner struct {
	mediator mediator.Mediator
	agents   world.AgentSource
	advancer Advancer
	clock    shared.Clock
	budget   time.Duration
}

// NewRunner creates a tick runner. A zero budget disables the budget check;
// advancer may be nil.
func NewRunner(
	m mediator.Mediator,
	agents world.AgentSource,
	advancer Advancer,
	clock shared.Clock,
	budget time.Duration,
) *Runner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Runner{
		mediator: m,
		agents:   agents,
		advancer: advancer,
		clock:    clock,
		budget:   budget,
	}
}

// Handle executes the run tick command
func (r *Runner) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunTickCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return r.RunTick(ctx, cmd.Tick)
}

// RunTick processes all agents for one tick, then advances the world. A tick
// cut short by cancellation does not advance the world.
func (r *Runner) RunTick(ctx context.Context, tick int64) (*RunTickResponse, error) {
	logger := logging.LoggerFromContext(ctx)
	start := r.clock.Now()

	agents, err := r.agents.Agents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	result := &RunTickResponse{Tick: tick, Agents: len(agents)}

	for i, a := range agents {
		if err := ctx.Err(); err != nil {
			result.Skipped = len(agents) - i
			break
		}
		if r.budget > 0 && r.clock.Now().Sub(start) >= r.budget {
			result.Skipped = len(agents) - i
			logger.Log(logging.LevelWarning, "Tick budget exhausted, deferring remaining agents", map[string]interface{}{
				"tick":    tick,
				"budget":  r.budget.String(),
				"skipped": result.Skipped,
				"next":    a.Name(),
			})
			break
		}

		agentCtx := logging.WithLogger(ctx, logging.WithFields(logger, map[string]interface{}{
			"agent": a.Name(),
			"tick":  tick,
		}))

		resp, err := r.processAgent(agentCtx, a)
		var notVisible *shared.RoomNotVisibleError
		switch {
		case err == nil:
			result.Processed++
			if resp != nil && resp.Corrected {
				result.Corrected++
			}
		case errors.As(err, &notVisible):
			result.NotVisible++
			logging.LoggerFromContext(agentCtx).Log(logging.LevelWarning, "Room not visible, skipping agent this tick", map[string]interface{}{
				"room":  notVisible.RoomName,
				"error": err.Error(),
			})
		default:
			result.Failed++
			logging.LoggerFromContext(agentCtx).Log(logging.LevelError, "Agent processing failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if r.advancer != nil && ctx.Err() == nil {
		r.advancer.Advance()
	}

	result.Duration = r.clock.Now().Sub(start)
	metrics.RecordTick(result.Duration, result.Processed, result.Skipped, result.Failed+result.NotVisible)

	logger.Log(logging.LevelDebug, "Tick complete", map[string]interface{}{
		"tick":        tick,
		"agents":      result.Agents,
		"processed":   result.Processed,
		"not_visible": result.NotVisible,
		"failed":      result.Failed,
		"skipped":     result.Skipped,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}

// processAgent sends the agent through the mediator, turning a panic into an error
func (r *Runner) processAgent(ctx context.Context, a world.Agent) (resp *behavior.ProcessAgentResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("panic while processing %s: %v", a.Name(), rec)
		}
	}()

	out, err := r.mediator.Send(ctx, &behavior.ProcessAgentCommand{Agent: a})
	if typed, ok := out.(*behavior.ProcessAgentResponse); ok {
		resp = typed
	}
	return resp, err
}
