package behavior

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// acquireEnergy works the first source of the room. A room without sources
// leaves the agent idle for the tick.
func (c *Controller) acquireEnergy(ctx context.Context, a world.Agent, room world.Room) error {
	sources := room.Sources()
	if len(sources) == 0 {
		return nil
	}
	source := sources[0]

	if !a.Pos().IsNearTo(source.Pos) {
		c.moveTo(ctx, a, source.Pos, source.ID)
		return nil
	}

	code := c.commander.Harvest(ctx, a, source)
	c.settle(ctx, a, verbHarvest, code, source.Pos, source.ID)
	return nil
}
