package helpers

import (
	"context"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// Command verbs recorded by MockWorld
const (
	VerbHarvest  = "harvest"
	VerbTransfer = "transfer"
	VerbBuild    = "build"
	VerbUpgrade  = "upgrade"
	VerbMove     = "move"
)

// MockAgent is a fixed world.Agent for tests
type MockAgent struct {
	AgentName string
	Position  shared.Position
	Inventory *shared.Store
}

// NewMockAgent creates an agent holding energy units out of capacity
func NewMockAgent(name string, pos shared.Position, capacity, energy int) *MockAgent {
	store, err := shared.NewStore(capacity, map[shared.ResourceKind]int{shared.ResourceEnergy: energy})
	if err != nil {
		panic(err)
	}
	return &MockAgent{AgentName: name, Position: pos, Inventory: store}
}

func (a *MockAgent) Name() string { return a.AgentName }
func (a *MockAgent) Pos() shared.Position { return a.Position }
func (a *MockAgent) Store() *shared.Store { return a.Inventory }

// MockRoom is a static world.Room
type MockRoom struct {
	RoomName      string
	SourceList    []world.Source
	StructureList []world.Structure
	Sites         []world.ConstructionSite
	Ctrl          *world.Controller
}

func (r *MockRoom) Name() string { return r.RoomName }
func (r *MockRoom) Sources() []world.Source { return r.SourceList }
func (r *MockRoom) Structures() []world.Structure { return r.StructureList }
func (r *MockRoom) ConstructionSites() []world.ConstructionSite { return r.Sites }

func (r *MockRoom) Controller() (*world.Controller, bool) {
	return r.Ctrl, r.Ctrl != nil
}

// IssuedCommand is one command received by MockWorld
type IssuedCommand struct {
	Verb     string
	Agent    string
	TargetID string
	Target   shared.Position
	Code     world.ReturnCode
}

// MockWorld implements world.Query and world.Commander for testing.
//
// Commands resolve by range like the real world (1 tile for harvest and
// transfer, 3 for build and upgrade) unless a code is scripted in Codes.
type MockWorld struct {
	Rooms       map[string]*MockRoom // key: room name
	Codes       map[string]world.ReturnCode
	Commands    []IssuedCommand
	RoomQueries int
	RoomErr     error
}

// NewMockWorld creates an empty mock world
func NewMockWorld() *MockWorld {
	return &MockWorld{
		Rooms: make(map[string]*MockRoom),
		Codes: make(map[string]world.ReturnCode),
	}
}

// AddRoom registers a room and returns it for further setup
func (w *MockWorld) AddRoom(name string) *MockRoom {
	room := &MockRoom{RoomName: name}
	w.Rooms[name] = room
	return room
}

// Verbs lists the verbs of all issued commands in order
func (w *MockWorld) Verbs() []string {
	verbs := make([]string, 0, len(w.Commands))
	for _, c := range w.Commands {
		verbs = append(verbs, c.Verb)
	}
	return verbs
}

// CountVerb counts issued commands with the given verb
func (w *MockWorld) CountVerb(verb string) int {
	n := 0
	for _, c := range w.Commands {
		if c.Verb == verb {
			n++
		}
	}
	return n
}

// Reset clears the recorded commands
func (w *MockWorld) Reset() {
	w.Commands = nil
	w.RoomQueries = 0
}

func (w *MockWorld) Room(ctx context.Context, agent world.Agent) (world.Room, error) {
	w.RoomQueries++
	if w.RoomErr != nil {
		return nil, w.RoomErr
	}
	room, ok := w.Rooms[agent.Pos().Room]
	if !ok {
		return nil, shared.NewRoomNotVisibleError(agent.Name(), agent.Pos().Room)
	}
	return room, nil
}

func (w *MockWorld) Harvest(ctx context.Context, agent world.Agent, source world.Source) world.ReturnCode {
	return w.record(VerbHarvest, agent, source.ID, source.Pos, 1)
}

func (w *MockWorld) Transfer(ctx context.Context, agent world.Agent, target world.Structure, resource shared.ResourceKind, amount *int) world.ReturnCode {
	return w.record(VerbTransfer, agent, target.ID, target.Pos, 1)
}

func (w *MockWorld) Build(ctx context.Context, agent world.Agent, site world.ConstructionSite) world.ReturnCode {
	return w.record(VerbBuild, agent, site.ID, site.Pos, 3)
}

func (w *MockWorld) UpgradeController(ctx context.Context, agent world.Agent, controller world.Controller) world.ReturnCode {
	return w.record(VerbUpgrade, agent, controller.ID, controller.Pos, 3)
}

func (w *MockWorld) MoveTo(ctx context.Context, agent world.Agent, target shared.Position) world.ReturnCode {
	return w.record(VerbMove, agent, "", target, -1)
}

func (w *MockWorld) record(verb string, agent world.Agent, targetID string, target shared.Position, reach int) world.ReturnCode {
	code, scripted := w.Codes[verb]
	if !scripted {
		code = world.OK
		if reach >= 0 && !agent.Pos().InRangeTo(target, reach) {
			code = world.ErrNotInRange
		}
	}
	w.Commands = append(w.Commands, IssuedCommand{
		Verb:     verb,
		Agent:    agent.Name(),
		TargetID: targetID,
		Target:   target,
		Code:     code,
	})
	return code
}
