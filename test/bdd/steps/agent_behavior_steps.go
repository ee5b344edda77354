package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/application/behavior"
	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
	"github.com/andrescamacho/colonybot-go/test/helpers"
)

// countingMemory counts writes passing through to the real repository
type countingMemory struct {
	agent.Memory
	writes int
}

func (m *countingMemory) SetInt(ctx context.Context, agentName, field string, value int) error {
	m.writes++
	return m.Memory.SetInt(ctx, agentName, field, value)
}

func (m *countingMemory) SetBool(ctx context.Context, agentName, field string, value bool) error {
	m.writes++
	return m.Memory.SetBool(ctx, agentName, field, value)
}

// agentBehaviorContext holds state for agent behavior scenarios
type agentBehaviorContext struct {
	world    *helpers.MockWorld
	room     *helpers.MockRoom
	repo     *persistence.GormAgentMemoryRepository
	memory   *countingMemory
	logger   *helpers.RecordingLogger
	agent    *helpers.MockAgent
	response *behavior.ProcessAgentResponse
	err      error
}

func (c *agentBehaviorContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	c.world = helpers.NewMockWorld()
	c.room = nil
	c.repo = persistence.NewGormAgentMemoryRepository(helpers.SharedTestDB, nil)
	c.memory = &countingMemory{Memory: c.repo}
	c.logger = helpers.NewRecordingLogger()
	c.agent = nil
	c.response = nil
	c.err = nil
	return nil
}

func (c *agentBehaviorContext) pos(x, y int) shared.Position {
	return shared.Position{X: x, Y: y, Room: c.room.RoomName}
}

// ============================================================================
// Setup Steps
// ============================================================================

func (c *agentBehaviorContext) aVisibleRoom(name string) error {
	c.room = c.world.AddRoom(name)
	return nil
}

func (c *agentBehaviorContext) anAgentAtHoldingEnergy(name string, x, y, energy, capacity int) error {
	c.agent = helpers.NewMockAgent(name, c.pos(x, y), capacity, energy)
	return nil
}

func (c *agentBehaviorContext) anAgentInUnseenRoom(name, room string) error {
	c.agent = helpers.NewMockAgent(name, shared.Position{X: 1, Y: 1, Room: room}, 50, 0)
	return nil
}

func (c *agentBehaviorContext) theAgentMemoryHolds(field, raw string) error {
	return c.repo.Set(context.Background(), c.agent.Name(), field, raw)
}

func (c *agentBehaviorContext) theAgentMemoryIsEmpty() error {
	return nil
}

func (c *agentBehaviorContext) aSourceAt(id string, x, y int) error {
	c.room.SourceList = append(c.room.SourceList, world.Source{ID: id, Pos: c.pos(x, y), Energy: 1000})
	return nil
}

func (c *agentBehaviorContext) theRoomHasStructures(table *godog.Table) error {
	for _, row := range tableRows(table) {
		x, y, err := rowPosition(row)
		if err != nil {
			return err
		}
		s := world.Structure{
			ID:           row["id"],
			Kind:         world.StructureKind(row["kind"]),
			Pos:          c.pos(x, y),
			Transferable: row["transferable"] != "no",
		}
		if row["capacity"] != "" {
			capacity, _ := strconv.Atoi(row["capacity"])
			energy, _ := strconv.Atoi(row["energy"])
			store, err := shared.NewStore(capacity, map[shared.ResourceKind]int{shared.ResourceEnergy: energy})
			if err != nil {
				return err
			}
			s.Store = store
		}
		c.room.StructureList = append(c.room.StructureList, s)
	}
	return nil
}

func (c *agentBehaviorContext) aConstructionSiteAt(id string, x, y int) error {
	c.room.Sites = append(c.room.Sites, world.ConstructionSite{
		ID:            id,
		Kind:          world.StructureExtension,
		Pos:           c.pos(x, y),
		ProgressTotal: 300,
	})
	return nil
}

func (c *agentBehaviorContext) aControllerAt(id string, x, y int) error {
	c.room.Ctrl = &world.Controller{ID: id, Pos: c.pos(x, y), Level: 1, ProgressTotal: 200}
	return nil
}

func (c *agentBehaviorContext) theWorldAnswersWith(verb, codeName string) error {
	for code := world.OK; code <= world.ErrNoBodyPart; code++ {
		if code.String() == codeName {
			c.world.Codes[verb] = code
			return nil
		}
	}
	return fmt.Errorf("unknown return code %s", codeName)
}

// ============================================================================
// Action Steps
// ============================================================================

func (c *agentBehaviorContext) theAgentIsDispatched() error {
	handler := behavior.NewProcessAgentHandler(behavior.NewController(c.world, c.world, c.memory))
	ctx := logging.WithLogger(context.Background(), c.logger)

	resp, err := handler.Handle(ctx, &behavior.ProcessAgentCommand{Agent: c.agent})
	c.err = err
	if err == nil {
		c.response = resp.(*behavior.ProcessAgentResponse)
	}
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (c *agentBehaviorContext) theDispatchSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *agentBehaviorContext) theDispatchReportsTheRoomAsNotVisible() error {
	var notVisible *shared.RoomNotVisibleError
	if !errors.As(c.err, &notVisible) {
		return fmt.Errorf("expected room not visible error, got %v", c.err)
	}
	return nil
}

func (c *agentBehaviorContext) theAgentRanTaskInPhase(task, phase string) error {
	if c.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if c.response.Task.String() != task || c.response.Phase != phase {
		return fmt.Errorf("expected %s/%s, got %s/%s", task, phase, c.response.Task, c.response.Phase)
	}
	return nil
}

func (c *agentBehaviorContext) noCommandsAreIssued() error {
	if len(c.world.Commands) != 0 {
		return fmt.Errorf("expected no commands, got %v", c.world.Verbs())
	}
	return nil
}

func (c *agentBehaviorContext) theIssuedCommandsAre(table *godog.Table) error {
	rows := tableRows(table)
	if len(rows) != len(c.world.Commands) {
		return fmt.Errorf("expected %d commands, got %v", len(rows), c.world.Verbs())
	}
	for i, row := range rows {
		cmd := c.world.Commands[i]
		x, y, err := rowPosition(row)
		if err != nil {
			return err
		}
		if cmd.Verb != row["verb"] || cmd.Target.X != x || cmd.Target.Y != y {
			return fmt.Errorf("command %d: expected %s at %d,%d, got %s at %d,%d",
				i+1, row["verb"], x, y, cmd.Verb, cmd.Target.X, cmd.Target.Y)
		}
		if want := row["code"]; want != "" && cmd.Code.String() != want {
			return fmt.Errorf("command %d: expected code %s, got %s", i+1, want, cmd.Code)
		}
	}
	return nil
}

func (c *agentBehaviorContext) theStoredFieldIs(field, want string) error {
	raw, found, err := c.repo.Get(context.Background(), c.agent.Name(), field)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("field %s not stored", field)
	}
	if raw != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, raw)
	}
	return nil
}

func (c *agentBehaviorContext) theFieldIsNotStored(field string) error {
	_, found, err := c.repo.Get(context.Background(), c.agent.Name(), field)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("field %s unexpectedly stored", field)
	}
	return nil
}

func (c *agentBehaviorContext) memoryWritesWereMade(n int) error {
	if c.memory.writes != n {
		return fmt.Errorf("expected %d memory writes, got %d", n, c.memory.writes)
	}
	return nil
}

func (c *agentBehaviorContext) entriesAreLoggedAtLevel(n int, level string) error {
	if got := c.logger.Count(level); got != n {
		return fmt.Errorf("expected %d %s entries, got %d", n, level, got)
	}
	return nil
}

// ============================================================================
// Table Helpers
// ============================================================================

// tableRows maps every data row of a table to its header names
func tableRows(table *godog.Table) []map[string]string {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0]
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		rows = append(rows, rowValues(header, row))
	}
	return rows
}

func rowValues(header, row *messages.PickleTableRow) map[string]string {
	values := make(map[string]string, len(header.Cells))
	for i, cell := range header.Cells {
		if i < len(row.Cells) {
			values[cell.Value] = row.Cells[i].Value
		}
	}
	return values
}

func rowPosition(row map[string]string) (int, int, error) {
	x, err := strconv.Atoi(row["x"])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q", row["x"])
	}
	y, err := strconv.Atoi(row["y"])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", row["y"])
	}
	return x, y, nil
}

// InitializeAgentBehaviorScenario registers the dispatch and hysteresis steps
func InitializeAgentBehaviorScenario(sc *godog.ScenarioContext) {
	c := &agentBehaviorContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, c.reset()
	})

	// Setup steps
	sc.Step(`^a visible room "([^"]*)"$`, c.aVisibleRoom)
	sc.Step(`^an agent "([^"]*)" at (\d+),(\d+) holding (\d+) of (\d+) energy$`, c.anAgentAtHoldingEnergy)
	sc.Step(`^an agent "([^"]*)" in the unseen room "([^"]*)"$`, c.anAgentInUnseenRoom)
	sc.Step(`^the agent memory holds "([^"]*)" = "([^"]*)"$`, c.theAgentMemoryHolds)
	sc.Step(`^the agent memory is empty$`, c.theAgentMemoryIsEmpty)
	sc.Step(`^a source "([^"]*)" at (\d+),(\d+)$`, c.aSourceAt)
	sc.Step(`^the room has structures:$`, c.theRoomHasStructures)
	sc.Step(`^a construction site "([^"]*)" at (\d+),(\d+)$`, c.aConstructionSiteAt)
	sc.Step(`^a controller "([^"]*)" at (\d+),(\d+)$`, c.aControllerAt)
	sc.Step(`^the world answers "([^"]*)" with "([^"]*)"$`, c.theWorldAnswersWith)

	// Action steps
	sc.Step(`^the agent is dispatched$`, c.theAgentIsDispatched)

	// Assertion steps
	sc.Step(`^the dispatch succeeds$`, c.theDispatchSucceeds)
	sc.Step(`^the dispatch reports the room as not visible$`, c.theDispatchReportsTheRoomAsNotVisible)
	sc.Step(`^the agent ran "([^"]*)" in the "([^"]*)" phase$`, c.theAgentRanTaskInPhase)
	sc.Step(`^no commands are issued$`, c.noCommandsAreIssued)
	sc.Step(`^the issued commands are:$`, c.theIssuedCommandsAre)
	sc.Step(`^the stored "([^"]*)" is "([^"]*)"$`, c.theStoredFieldIs)
	sc.Step(`^"([^"]*)" is not stored$`, c.theFieldIsNotStored)
	sc.Step(`^(\d+) memory writes? (?:was|were) made$`, c.memoryWritesWereMade)
	sc.Step(`^(\d+) (DEBUG|INFO|WARNING|ERROR) entr(?:y is|ies are) logged$`, c.entriesAreLoggedAtLevel)
}
