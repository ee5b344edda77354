package behavior

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// Deposit priority tiers, lowest is filled first
const (
	tierExtension = 0
	tierBuffer    = 1
	tierSpawn     = 2
)

// StorageCandidate is a structure that can accept energy right now
type StorageCandidate struct {
	Structure  world.Structure
	FreeEnergy int
	Tier       int
}

// depositTier ranks a structure kind; ok is false for kinds that never take deposits
func depositTier(kind world.StructureKind) (tier int, ok bool) {
	switch kind {
	case world.StructureExtension:
		return tierExtension, true
	case world.StructureContainer, world.StructureTower:
		return tierBuffer, true
	case world.StructureSpawn:
		return tierSpawn, true
	default:
		return 0, false
	}
}

// SelectDepositTarget picks the structure to fill: extensions first, then
// containers and towers, then spawns. Structures without free energy capacity
// are skipped. Within a tier the first structure listed wins.
func SelectDepositTarget(structures []world.Structure) (StorageCandidate, bool) {
	var best StorageCandidate
	found := false

	for _, s := range structures {
		tier, ok := depositTier(s.Kind)
		if !ok {
			continue
		}
		free := s.FreeEnergyCapacity()
		if free <= 0 {
			continue
		}
		if !found || tier < best.Tier {
			best = StorageCandidate{Structure: s, FreeEnergy: free, Tier: tier}
			found = true
		}
	}

	return best, found
}

// depositEnergy hands everything the agent carries to the selected structure
func (c *Controller) depositEnergy(ctx context.Context, a world.Agent, room world.Room) error {
	candidate, ok := SelectDepositTarget(room.Structures())
	if !ok {
		return nil
	}
	target := candidate.Structure

	if !target.Transferable {
		logging.LoggerFromContext(ctx).Log(logging.LevelWarning, "Deposit target does not accept transfers", map[string]interface{}{
			"agent":  a.Name(),
			"action": verbTransfer,
			"target": target.ID,
			"kind":   string(target.Kind),
		})
		return nil
	}

	code := c.commander.Transfer(ctx, a, target, shared.ResourceEnergy, nil)
	c.settle(ctx, a, verbTransfer, code, target.Pos, target.ID)
	return nil
}
