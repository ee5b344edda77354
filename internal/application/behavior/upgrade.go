package behavior

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// advanceObjective spends energy on the room controller
func (c *Controller) advanceObjective(ctx context.Context, a world.Agent, room world.Room) error {
	controller, ok := room.Controller()
	if !ok || controller == nil {
		logging.LoggerFromContext(ctx).Log(logging.LevelWarning, "Room has no controller to upgrade", map[string]interface{}{
			"agent":  a.Name(),
			"action": verbUpgrade,
			"room":   room.Name(),
		})
		return nil
	}

	code := c.commander.UpgradeController(ctx, a, *controller)
	c.settle(ctx, a, verbUpgrade, code, controller.Pos, controller.ID)
	return nil
}
