package world

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// Agent is the per-tick read handle of one autonomous unit
type Agent interface {
	Name() string
	Pos() shared.Position
	Store() *shared.Store
}

// Room is the observation surface of the region an agent occupies.
// Every call reflects the current tick; callers must not cache results across ticks.
type Room interface {
	Name() string
	Sources() []Source
	Structures() []Structure
	ConstructionSites() []ConstructionSite
	Controller() (*Controller, bool)
}

// Query resolves the room an agent currently occupies.
// It returns *shared.RoomNotVisibleError when the room cannot be observed.
type Query interface {
	Room(ctx context.Context, agent Agent) (Room, error)
}

// Commander issues fire-and-forget commands on behalf of an agent.
// The effect of a command shows up in later observations, never synchronously.
type Commander interface {
	Harvest(ctx context.Context, agent Agent, source Source) ReturnCode
	// Transfer moves amount units of resource into target; a nil amount transfers everything held
	Transfer(ctx context.Context, agent Agent, target Structure, resource shared.ResourceKind, amount *int) ReturnCode
	Build(ctx context.Context, agent Agent, site ConstructionSite) ReturnCode
	UpgradeController(ctx context.Context, agent Agent, controller Controller) ReturnCode
	MoveTo(ctx context.Context, agent Agent, target shared.Position) ReturnCode
}

// AgentSource enumerates the agents to process in the current tick
type AgentSource interface {
	Agents(ctx context.Context) ([]Agent, error)
}
