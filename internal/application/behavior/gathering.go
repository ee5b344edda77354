package behavior

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// nextGathering is the hysteresis rule of the gather/spend cycle. An agent
// starts gathering only once it holds nothing and stops only once it has no
// free room for energy; between the two boundaries the phase is kept.
func nextGathering(gathering bool, used, freeEnergy int) bool {
	if !gathering && used == 0 {
		return true
	}
	if gathering && freeEnergy == 0 {
		return false
	}
	return gathering
}

// updateGathering reads the persisted phase, applies the hysteresis rule and
// writes the flag back only when it changed.
func (c *Controller) updateGathering(ctx context.Context, a world.Agent) (bool, error) {
	logger := logging.LoggerFromContext(ctx)

	current, _, err := c.memory.Bool(ctx, a.Name(), agent.FieldGathering)
	var decodeErr *shared.MemoryDecodeError
	if errors.As(err, &decodeErr) {
		logger.Log(logging.LevelWarning, "Agent gathering flag unreadable, assuming spend phase", map[string]interface{}{
			"agent": a.Name(),
			"raw":   decodeErr.Raw,
		})
		current = false
	} else if err != nil {
		return false, fmt.Errorf("failed to read gathering flag of %s: %w", a.Name(), err)
	}

	store := a.Store()
	next := nextGathering(current, store.UsedCapacity(nil), store.FreeCapacity(shared.ResourceEnergy))
	if next == current {
		return current, nil
	}

	if err := c.memory.SetBool(ctx, a.Name(), agent.FieldGathering, next); err != nil {
		return current, fmt.Errorf("failed to persist gathering flag of %s: %w", a.Name(), err)
	}

	logger.Log(logging.LevelDebug, "Agent switched phase", map[string]interface{}{
		"agent":     a.Name(),
		"gathering": next,
	})
	return next, nil
}
