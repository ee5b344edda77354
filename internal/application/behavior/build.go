package behavior

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// constructSite spends energy on the first construction site of the room
func (c *Controller) constructSite(ctx context.Context, a world.Agent, room world.Room) error {
	sites := room.ConstructionSites()
	if len(sites) == 0 {
		return nil
	}
	site := sites[0]

	code := c.commander.Build(ctx, a, site)
	c.settle(ctx, a, verbBuild, code, site.Pos, site.ID)
	return nil
}
