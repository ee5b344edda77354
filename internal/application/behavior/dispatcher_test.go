package behavior

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
	"github.com/andrescamacho/colonybot-go/test/helpers"
)

const roomName = "W1N1"

type fixture struct {
	world  *helpers.MockWorld
	room   *helpers.MockRoom
	memory *helpers.MockMemory
	logger *helpers.RecordingLogger
	ctrl   *Controller
	ctx    context.Context
}

func newFixture() *fixture {
	w := helpers.NewMockWorld()
	memory := helpers.NewMockMemory()
	logger := helpers.NewRecordingLogger()
	return &fixture{
		world:  w,
		room:   w.AddRoom(roomName),
		memory: memory,
		logger: logger,
		ctrl:   NewController(w, w, memory),
		ctx:    logging.WithLogger(context.Background(), logger),
	}
}

func at(x, y int) shared.Position {
	return shared.Position{X: x, Y: y, Room: roomName}
}

func (f *fixture) agent(task agent.Task, gathering bool, pos shared.Position, capacity, energy int) *helpers.MockAgent {
	a := helpers.NewMockAgent("worker-1", pos, capacity, energy)
	f.memory.Seed(a.Name(), agent.FieldActivity, strconv.Itoa(task.Code()))
	f.memory.Seed(a.Name(), agent.FieldGathering, strconv.FormatBool(gathering))
	return a
}

func TestDispatch_UnusableTaskResetsToIdle(t *testing.T) {
	tests := []struct {
		name   string
		raw    *string
		reason string
	}{
		{"missing", nil, "missing"},
		{"out of range", strPtr("7"), "out_of_range"},
		{"negative", strPtr("-1"), "out_of_range"},
		{"undecodable", strPtr("harvest"), "undecodable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.room.SourceList = []world.Source{{ID: "src", Pos: at(5, 5)}}
			a := helpers.NewMockAgent("worker-1", at(5, 6), 50, 0)
			if tt.raw != nil {
				f.memory.Seed(a.Name(), agent.FieldActivity, *tt.raw)
			}

			result, err := f.ctrl.Dispatch(f.ctx, a)
			require.NoError(t, err)

			assert.Equal(t, agent.TaskIdle, result.Task)
			assert.True(t, result.Corrected)
			assert.Equal(t, PhaseNone, result.Phase)

			require.Len(t, f.memory.Writes, 1)
			assert.Equal(t, helpers.MemoryWrite{Agent: "worker-1", Field: agent.FieldActivity, Value: "0"}, f.memory.Writes[0])
			assert.Empty(t, f.world.Commands)
			assert.Zero(t, f.world.RoomQueries)

			require.Equal(t, 1, f.logger.Count(logging.LevelInfo))
			assert.Equal(t, tt.reason, f.logger.Entries[0].Metadata["reason"])
		})
	}
}

func TestDispatch_IdleDoesNothing(t *testing.T) {
	f := newFixture()
	f.room.SourceList = []world.Source{{ID: "src", Pos: at(5, 5)}}
	a := f.agent(agent.TaskIdle, false, at(5, 6), 50, 0)

	result, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Equal(t, agent.TaskIdle, result.Task)
	assert.False(t, result.Corrected)
	assert.Empty(t, f.world.Commands)
	assert.Empty(t, f.memory.Writes)
	assert.Zero(t, f.world.RoomQueries)
	assert.Empty(t, f.logger.Entries)
}

func TestDispatch_HarvestStartsGatheringAndMovesToSource(t *testing.T) {
	f := newFixture()
	f.room.SourceList = []world.Source{{ID: "src", Pos: at(10, 10)}}
	a := f.agent(agent.TaskHarvest, false, at(2, 2), 50, 0)

	result, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Equal(t, PhaseGather, result.Phase)
	assert.Equal(t, []helpers.MemoryWrite{{Agent: "worker-1", Field: agent.FieldGathering, Value: "true"}}, f.memory.Writes)
	require.Equal(t, []string{helpers.VerbMove}, f.world.Verbs())
	assert.Equal(t, at(10, 10), f.world.Commands[0].Target)
}

func TestDispatch_GatheringAgentAdjacentHarvests(t *testing.T) {
	f := newFixture()
	f.room.SourceList = []world.Source{
		{ID: "first", Pos: at(5, 5)},
		{ID: "second", Pos: at(6, 6)},
	}
	a := f.agent(agent.TaskHarvest, true, at(4, 4), 50, 10)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.memory.Writes)
	require.Equal(t, []string{helpers.VerbHarvest}, f.world.Verbs())
	assert.Equal(t, "first", f.world.Commands[0].TargetID)
}

func TestDispatch_HarvestFailureIsLoggedOnly(t *testing.T) {
	f := newFixture()
	f.room.SourceList = []world.Source{{ID: "src", Pos: at(5, 5)}}
	f.world.Codes[helpers.VerbHarvest] = world.ErrNotEnoughResources
	a := f.agent(agent.TaskHarvest, true, at(5, 6), 50, 10)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Equal(t, []string{helpers.VerbHarvest}, f.world.Verbs())
	assert.Empty(t, f.memory.Writes)
	require.Equal(t, 1, f.logger.Count(logging.LevelWarning))
	assert.Equal(t, "ERR_NOT_ENOUGH_RESOURCES", f.logger.Entries[0].Metadata["code"])
}

func TestDispatch_NoSourceIsSilent(t *testing.T) {
	f := newFixture()
	a := f.agent(agent.TaskHarvest, true, at(5, 6), 50, 10)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.world.Commands)
	assert.Empty(t, f.logger.Entries)
}

func TestDispatch_FullAgentStopsGatheringAndDeposits(t *testing.T) {
	f := newFixture()
	f.room.StructureList = []world.Structure{
		structure(t, "spawn", world.StructureSpawn, 300, 0),
		structure(t, "ext", world.StructureExtension, 50, 0),
	}
	a := f.agent(agent.TaskHarvest, true, at(10, 11), 50, 50)

	result, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Equal(t, PhaseSpend, result.Phase)
	assert.Equal(t, []helpers.MemoryWrite{{Agent: "worker-1", Field: agent.FieldGathering, Value: "false"}}, f.memory.Writes)
	require.Equal(t, []string{helpers.VerbTransfer}, f.world.Verbs())
	assert.Equal(t, "ext", f.world.Commands[0].TargetID)
}

func TestDispatch_NotInRangeMovesExactlyOnce(t *testing.T) {
	tests := []struct {
		name  string
		task  agent.Task
		setup func(t *testing.T, room *helpers.MockRoom)
		verb  string
	}{
		{
			name: "transfer",
			task: agent.TaskHarvest,
			setup: func(t *testing.T, room *helpers.MockRoom) {
				room.StructureList = []world.Structure{structure(t, "ext", world.StructureExtension, 50, 0)}
			},
			verb: helpers.VerbTransfer,
		},
		{
			name: "upgrade",
			task: agent.TaskConquer,
			setup: func(t *testing.T, room *helpers.MockRoom) {
				room.Ctrl = &world.Controller{ID: "ctrl", Pos: at(10, 10)}
			},
			verb: helpers.VerbUpgrade,
		},
		{
			name: "build",
			task: agent.TaskBuild,
			setup: func(t *testing.T, room *helpers.MockRoom) {
				room.Sites = []world.ConstructionSite{{ID: "site", Pos: at(10, 10)}}
			},
			verb: helpers.VerbBuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(t, f.room)
			a := f.agent(tt.task, false, at(30, 30), 50, 25)

			_, err := f.ctrl.Dispatch(f.ctx, a)
			require.NoError(t, err)

			assert.Equal(t, []string{tt.verb, helpers.VerbMove}, f.world.Verbs())
			assert.Equal(t, at(10, 10), f.world.Commands[1].Target)
			assert.Empty(t, f.memory.Writes)
			assert.Zero(t, f.logger.Count(logging.LevelWarning))
		})
	}
}

func TestDispatch_BuildAdjacentBuildsFirstSite(t *testing.T) {
	f := newFixture()
	f.room.Sites = []world.ConstructionSite{
		{ID: "first", Pos: at(10, 10)},
		{ID: "second", Pos: at(30, 30)},
	}
	a := f.agent(agent.TaskBuild, false, at(11, 11), 50, 25)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	require.Equal(t, []string{helpers.VerbBuild}, f.world.Verbs())
	assert.Equal(t, "first", f.world.Commands[0].TargetID)
}

func TestDispatch_BuildWithoutSitesIsSilent(t *testing.T) {
	f := newFixture()
	a := f.agent(agent.TaskBuild, false, at(11, 11), 50, 25)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.world.Commands)
	assert.Empty(t, f.logger.Entries)
}

func TestDispatch_ConquerWithoutControllerWarns(t *testing.T) {
	f := newFixture()
	a := f.agent(agent.TaskConquer, false, at(11, 11), 50, 25)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.world.Commands)
	assert.Empty(t, f.memory.Writes)
	assert.Equal(t, 1, f.logger.Count(logging.LevelWarning))
}

func TestDispatch_DepositTargetNotTransferable(t *testing.T) {
	f := newFixture()
	ext := structure(t, "ext", world.StructureExtension, 50, 0)
	ext.Transferable = false
	f.room.StructureList = []world.Structure{ext, structure(t, "spawn", world.StructureSpawn, 300, 0)}
	a := f.agent(agent.TaskHarvest, false, at(10, 11), 50, 25)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.world.Commands)
	assert.Equal(t, 1, f.logger.Count(logging.LevelWarning))
}

func TestDispatch_NoDepositTargetIsSilent(t *testing.T) {
	f := newFixture()
	f.room.StructureList = []world.Structure{structure(t, "spawn", world.StructureSpawn, 300, 300)}
	a := f.agent(agent.TaskHarvest, false, at(10, 11), 50, 25)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Empty(t, f.world.Commands)
	assert.Empty(t, f.logger.Entries)
}

func TestDispatch_CorruptGatheringFlagReadsAsSpend(t *testing.T) {
	f := newFixture()
	f.room.Sites = []world.ConstructionSite{{ID: "site", Pos: at(10, 10)}}
	a := f.agent(agent.TaskBuild, false, at(10, 11), 50, 25)
	f.memory.Seed(a.Name(), agent.FieldGathering, "maybe")

	result, err := f.ctrl.Dispatch(f.ctx, a)
	require.NoError(t, err)

	assert.Equal(t, PhaseSpend, result.Phase)
	assert.Empty(t, f.memory.Writes)
	assert.Equal(t, []string{helpers.VerbBuild}, f.world.Verbs())
	assert.Equal(t, 1, f.logger.Count(logging.LevelWarning))
}

func TestDispatch_RoomNotVisibleIsRecoverable(t *testing.T) {
	f := newFixture()
	a := helpers.NewMockAgent("scout", shared.Position{X: 1, Y: 1, Room: "E5S5"}, 50, 0)
	f.memory.Seed(a.Name(), agent.FieldActivity, "2")

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.Error(t, err)

	var notVisible *shared.RoomNotVisibleError
	require.True(t, errors.As(err, &notVisible))
	assert.Equal(t, "E5S5", notVisible.RoomName)
	assert.Empty(t, f.world.Commands)

	// the phase flip happened before observation and stays persisted
	assert.Equal(t, []helpers.MemoryWrite{{Agent: "scout", Field: agent.FieldGathering, Value: "true"}}, f.memory.Writes)
}

func TestDispatch_StoreFailureIsReturned(t *testing.T) {
	f := newFixture()
	f.memory.ReadErr = errors.New("database is locked")
	a := helpers.NewMockAgent("worker-1", at(1, 1), 50, 0)

	_, err := f.ctrl.Dispatch(f.ctx, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Empty(t, f.memory.Writes)
}

func TestProcessAgentHandler_ThroughMediator(t *testing.T) {
	f := newFixture()
	f.room.Ctrl = &world.Controller{ID: "ctrl", Pos: at(10, 10)}
	a := f.agent(agent.TaskConquer, false, at(12, 12), 50, 25)

	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*ProcessAgentCommand](m, NewProcessAgentHandler(f.ctrl)))

	resp, err := m.Send(f.ctx, &ProcessAgentCommand{Agent: a})
	require.NoError(t, err)

	result, ok := resp.(*ProcessAgentResponse)
	require.True(t, ok)
	assert.Equal(t, agent.TaskConquer, result.Task)
	assert.Equal(t, []string{helpers.VerbUpgrade}, f.world.Verbs())
}

func TestProcessAgentHandler_RejectsWrongRequest(t *testing.T) {
	h := NewProcessAgentHandler(newFixture().ctrl)

	_, err := h.Handle(context.Background(), "not a command")
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), &ProcessAgentCommand{})
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
