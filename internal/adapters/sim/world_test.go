package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

var (
	_ world.Query       = (*World)(nil)
	_ world.Commander   = (*World)(nil)
	_ world.AgentSource = (*World)(nil)
)

const testScenario = `
name: test
harvest_power: 4
build_power: 10
upgrade_power: 3
source_regen: 2
rooms:
  - name: W1N1
    sources:
      - { id: src, x: 5, y: 5, energy: 6, capacity: 10 }
    structures:
      - { id: ext, kind: extension, x: 8, y: 8, capacity: 50, energy: 45 }
      - { id: locked, kind: container, x: 9, y: 9, capacity: 100, locked: true }
    sites:
      - { id: site, kind: extension, x: 20, y: 20, progress: 0, total: 15 }
    controller: { id: ctrl, x: 30, y: 30, level: 1, progress: 0, total: 5 }
agents:
  - { name: miner, room: W1N1, x: 6, y: 6, capacity: 10, energy: 0 }
  - { name: hauler, room: W1N1, x: 7, y: 7, capacity: 50, energy: 20 }
  - { name: builder, room: W1N1, x: 18, y: 18, capacity: 50, energy: 12 }
  - { name: upgrader, room: W1N1, x: 27, y: 27, capacity: 50, energy: 7 }
`

func newTestWorld(t *testing.T) (*World, map[string]world.Agent) {
	t.Helper()
	s, err := ParseScenario([]byte(testScenario))
	require.NoError(t, err)
	w, err := NewWorld(s)
	require.NoError(t, err)

	agents, err := w.Agents(context.Background())
	require.NoError(t, err)
	byName := make(map[string]world.Agent, len(agents))
	for _, a := range agents {
		byName[a.Name()] = a
	}
	return w, byName
}

func observe(t *testing.T, w *World, a world.Agent) world.Room {
	t.Helper()
	room, err := w.Room(context.Background(), a)
	require.NoError(t, err)
	return room
}

func energyOf(a world.Agent) int {
	kind := shared.ResourceEnergy
	return a.Store().UsedCapacity(&kind)
}

func TestWorld_AgentsInScenarioOrder(t *testing.T) {
	w, _ := newTestWorld(t)
	agents, err := w.Agents(context.Background())
	require.NoError(t, err)

	var names []string
	for _, a := range agents {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"miner", "hauler", "builder", "upgrader"}, names)
}

func TestWorld_Harvest(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	miner := agents["miner"]
	src := observe(t, w, miner).Sources()[0]

	assert.Equal(t, world.OK, w.Harvest(ctx, miner, src))
	assert.Equal(t, 4, energyOf(miner))

	// source only has 2 left
	assert.Equal(t, world.OK, w.Harvest(ctx, miner, src))
	assert.Equal(t, 6, energyOf(miner))
	assert.Equal(t, world.ErrNotEnoughResources, w.Harvest(ctx, miner, src))

	w.Advance()
	assert.Equal(t, 2, observe(t, w, miner).Sources()[0].Energy)
	assert.Equal(t, int64(1), w.Tick())

	far := agents["upgrader"]
	assert.Equal(t, world.ErrNotInRange, w.Harvest(ctx, far, src))
}

func TestWorld_HarvestFullAgent(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	miner := agents["miner"]
	src := observe(t, w, miner).Sources()[0]

	miner.Store().Add(shared.ResourceEnergy, 10)
	assert.Equal(t, world.ErrFull, w.Harvest(ctx, miner, src))
}

func TestWorld_TransferAll(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	hauler := agents["hauler"]
	room := observe(t, w, hauler)
	ext := room.Structures()[0]

	assert.Equal(t, world.OK, w.Transfer(ctx, hauler, ext, shared.ResourceEnergy, nil))
	// extension had room for 5 only
	assert.Equal(t, 15, energyOf(hauler))
	assert.Equal(t, 0, observe(t, w, hauler).Structures()[0].FreeEnergyCapacity())

	// the earlier snapshot is unaffected
	assert.Equal(t, 5, ext.FreeEnergyCapacity())

	assert.Equal(t, world.ErrFull, w.Transfer(ctx, hauler, ext, shared.ResourceEnergy, nil))
}

func TestWorld_TransferRules(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	room := observe(t, w, agents["hauler"])
	ext := room.Structures()[0]
	locked := room.Structures()[1]

	assert.Equal(t, world.ErrInvalidTarget, w.Transfer(ctx, agents["hauler"], locked, shared.ResourceEnergy, nil))
	assert.Equal(t, world.ErrNotInRange, w.Transfer(ctx, agents["builder"], ext, shared.ResourceEnergy, nil))

	// empty miner steps next to the extension first
	require.Equal(t, world.OK, w.MoveTo(ctx, agents["miner"], ext.Pos))
	assert.Equal(t, world.ErrNotEnoughResources, w.Transfer(ctx, agents["miner"], ext, shared.ResourceEnergy, nil))

	tooMuch := 30
	assert.Equal(t, world.ErrNotEnoughResources, w.Transfer(ctx, agents["hauler"], ext, shared.ResourceEnergy, &tooMuch))
	zero := 0
	assert.Equal(t, world.ErrInvalidArgs, w.Transfer(ctx, agents["hauler"], ext, shared.ResourceEnergy, &zero))
}

func TestWorld_BuildCompletesSite(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	builder := agents["builder"]
	site := observe(t, w, builder).ConstructionSites()[0]

	assert.Equal(t, world.OK, w.Build(ctx, builder, site))
	assert.Equal(t, 2, energyOf(builder))
	assert.Equal(t, 10, observe(t, w, builder).ConstructionSites()[0].Progress)

	builder.Store().Add(shared.ResourceEnergy, 20)
	assert.Equal(t, world.OK, w.Build(ctx, builder, site))
	// only 5 progress was missing
	assert.Equal(t, 17, energyOf(builder))

	room := observe(t, w, builder)
	assert.Empty(t, room.ConstructionSites())
	built := room.Structures()[len(room.Structures())-1]
	assert.Equal(t, "site", built.ID)
	assert.Equal(t, world.StructureExtension, built.Kind)
	assert.Equal(t, 50, built.FreeEnergyCapacity())
	assert.True(t, built.Transferable)

	assert.Equal(t, world.ErrInvalidTarget, w.Build(ctx, builder, site))
}

func TestWorld_UpgradeLevelsController(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	upgrader := agents["upgrader"]
	ctrl, ok := observe(t, w, upgrader).Controller()
	require.True(t, ok)

	assert.Equal(t, world.OK, w.UpgradeController(ctx, upgrader, *ctrl))
	assert.Equal(t, world.OK, w.UpgradeController(ctx, upgrader, *ctrl))

	after, _ := observe(t, w, upgrader).Controller()
	assert.Equal(t, 2, after.Level)
	assert.Equal(t, 1, after.Progress)
	assert.Equal(t, 1, energyOf(upgrader))

	assert.Equal(t, world.ErrNotInRange, w.UpgradeController(ctx, agents["miner"], *ctrl))
}

func TestWorld_MoveOncePerTick(t *testing.T) {
	ctx := context.Background()
	w, agents := newTestWorld(t)
	builder := agents["builder"]
	target := shared.Position{X: 20, Y: 25, Room: "W1N1"}

	assert.Equal(t, world.OK, w.MoveTo(ctx, builder, target))
	assert.Equal(t, shared.Position{X: 19, Y: 19, Room: "W1N1"}, builder.Pos())
	assert.Equal(t, world.ErrTired, w.MoveTo(ctx, builder, target))

	w.Advance()
	assert.Equal(t, world.OK, w.MoveTo(ctx, builder, target))
	assert.Equal(t, shared.Position{X: 20, Y: 20, Room: "W1N1"}, builder.Pos())

	assert.Equal(t, world.ErrInvalidArgs, w.MoveTo(ctx, builder, shared.Position{X: 1, Y: 1, Room: "E1S1"}))
}

func TestWorld_UnknownAgentAndRoom(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorld(t)
	stranger := &Agent{name: "stranger", pos: shared.Position{X: 1, Y: 1, Room: "E9S9"}}

	_, err := w.Room(ctx, stranger)
	var notVisible *shared.RoomNotVisibleError
	require.True(t, errors.As(err, &notVisible))

	assert.Equal(t, world.ErrNotOwner, w.MoveTo(ctx, stranger, shared.Position{X: 2, Y: 2, Room: "E9S9"}))
}

func TestWorld_Status(t *testing.T) {
	w, _ := newTestWorld(t)
	st := w.Status()

	assert.Equal(t, "test", st.Scenario)
	require.Len(t, st.Rooms, 1)
	assert.Equal(t, 6, st.Rooms[0].SourceEnergy)
	assert.Equal(t, 45, st.Rooms[0].StoredEnergy)
	assert.Equal(t, 1, st.Rooms[0].SitesRemaining)
	assert.Equal(t, 1, st.Rooms[0].ControllerLevel)
	require.Len(t, st.Agents, 4)
	assert.Equal(t, 20, st.Agents[1].Energy)
}
