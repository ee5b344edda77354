package behavior

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/colonybot-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// Gathering phases reported in responses and metrics
const (
	PhaseNone   = "none"
	PhaseGather = "gather"
	PhaseSpend  = "spend"
)

// ProcessAgentCommand runs one tick of behavior for a single agent
type ProcessAgentCommand struct {
	Agent world.Agent
}

// ProcessAgentResponse reports what the controller decided for the agent
type ProcessAgentResponse struct {
	AgentName string
	Task      agent.Task
	Phase     string
	// Corrected is set when the persisted task was unusable and reset to idle
	Corrected bool
}

// ProcessAgentHandler adapts the Controller to the mediator
type ProcessAgentHandler struct {
	controller *Controller
}

// NewProcessAgentHandler creates a new process agent handler
func NewProcessAgentHandler(controller *Controller) *ProcessAgentHandler {
	return &ProcessAgentHandler{controller: controller}
}

// Handle executes the process agent command
func (h *ProcessAgentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ProcessAgentCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Agent == nil {
		return nil, fmt.Errorf("process agent: agent is required")
	}

	return h.controller.Dispatch(ctx, cmd.Agent)
}

// Controller decides and issues exactly one action per agent per tick
// from the agent's persisted task and the current room observation.
type Controller struct {
	query     world.Query
	commander world.Commander
	memory    agent.Memory
}

// NewController creates a behavior controller
func NewController(query world.Query, commander world.Commander, memory agent.Memory) *Controller {
	return &Controller{
		query:     query,
		commander: commander,
		memory:    memory,
	}
}

// spendFunc is the task-specific half of the gather/spend cycle
type spendFunc func(ctx context.Context, a world.Agent, room world.Room) error

// Dispatch runs the agent's persisted task for this tick.
//
// A *shared.RoomNotVisibleError in the returned chain means the agent was
// skipped for this tick only; store failures are returned wrapped.
func (c *Controller) Dispatch(ctx context.Context, a world.Agent) (*ProcessAgentResponse, error) {
	task, corrected, err := c.resolveTask(ctx, a)
	if err != nil {
		return nil, err
	}

	result := &ProcessAgentResponse{
		AgentName: a.Name(),
		Task:      task,
		Phase:     PhaseNone,
		Corrected: corrected,
	}

	var spend spendFunc
	switch task {
	case agent.TaskConquer:
		spend = c.advanceObjective
	case agent.TaskHarvest:
		spend = c.depositEnergy
	case agent.TaskBuild:
		spend = c.constructSite
	default:
		metrics.RecordDispatch(task.String(), PhaseNone)
		return result, nil
	}

	phase, err := c.runCycle(ctx, a, spend)
	if phase != "" {
		result.Phase = phase
	}
	metrics.RecordDispatch(task.String(), result.Phase)
	return result, err
}

// resolveTask decodes the persisted task. Anything unusable becomes Idle and
// the idle code is written back once.
func (c *Controller) resolveTask(ctx context.Context, a world.Agent) (agent.Task, bool, error) {
	logger := logging.LoggerFromContext(ctx)

	code, found, err := c.memory.Int(ctx, a.Name(), agent.FieldActivity)

	var reason string
	var decodeErr *shared.MemoryDecodeError
	switch {
	case errors.As(err, &decodeErr):
		reason = "undecodable"
	case err != nil:
		return agent.TaskIdle, false, fmt.Errorf("failed to read task of %s: %w", a.Name(), err)
	case !found:
		reason = "missing"
	default:
		task, ok := agent.DecodeTask(code)
		if ok {
			return task, false, nil
		}
		reason = "out_of_range"
	}

	metadata := map[string]interface{}{
		"agent":  a.Name(),
		"action": "reset_task",
		"reason": reason,
	}
	if decodeErr != nil {
		metadata["raw"] = decodeErr.Raw
	} else if found {
		metadata["code"] = code
	}
	logger.Log(logging.LevelInfo, "Agent has no usable task, falling back to idle", metadata)

	if err := c.memory.SetInt(ctx, a.Name(), agent.FieldActivity, agent.TaskIdle.Code()); err != nil {
		return agent.TaskIdle, true, fmt.Errorf("failed to reset task of %s: %w", a.Name(), err)
	}
	metrics.RecordStateCorrection(reason)

	return agent.TaskIdle, true, nil
}

// runCycle applies the gathering hysteresis, then either acquires energy or
// spends it through the task behavior. It returns the phase that ran.
func (c *Controller) runCycle(ctx context.Context, a world.Agent, spend spendFunc) (string, error) {
	gathering, err := c.updateGathering(ctx, a)
	if err != nil {
		return "", err
	}

	room, err := c.query.Room(ctx, a)
	if err != nil {
		return "", fmt.Errorf("failed to observe room of %s: %w", a.Name(), err)
	}

	if gathering {
		return PhaseGather, c.acquireEnergy(ctx, a, room)
	}
	return PhaseSpend, spend(ctx, a, room)
}

// settle handles the return code of a task command: success is silent, out of
// range moves toward the target once, anything else is logged.
func (c *Controller) settle(
	ctx context.Context,
	a world.Agent,
	verb string,
	code world.ReturnCode,
	target shared.Position,
	targetID string,
) {
	metrics.RecordWorldCommand(verb, code.String())

	switch code {
	case world.OK:
		return
	case world.ErrNotInRange:
		c.moveTo(ctx, a, target, targetID)
	default:
		logging.LoggerFromContext(ctx).Log(logging.LevelWarning, "Agent command failed", map[string]interface{}{
			"agent":  a.Name(),
			"action": verb,
			"target": targetID,
			"code":   code.String(),
		})
	}
}

func (c *Controller) moveTo(ctx context.Context, a world.Agent, target shared.Position, targetID string) {
	code := c.commander.MoveTo(ctx, a, target)
	metrics.RecordWorldCommand(verbMove, code.String())

	if code != world.OK {
		logging.LoggerFromContext(ctx).Log(logging.LevelWarning, "Agent failed to move", map[string]interface{}{
			"agent":       a.Name(),
			"action":      verbMove,
			"target":      targetID,
			"destination": target.String(),
			"code":        code.String(),
		})
	}
}

// Command verbs used for metrics and log metadata
const (
	verbHarvest  = "harvest"
	verbTransfer = "transfer"
	verbBuild    = "build"
	verbUpgrade  = "upgrade"
	verbMove     = "move"
)
