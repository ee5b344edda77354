package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// Interaction ranges of the simulated world
const (
	harvestRange  = 1
	transferRange = 1
	buildRange    = 3
	upgradeRange  = 3
)

// energyCapacityByKind is the store size a finished construction site gets
var energyCapacityByKind = map[world.StructureKind]int{
	world.StructureSpawn:     300,
	world.StructureExtension: 50,
	world.StructureContainer: 2000,
	world.StructureTower:     1000,
	world.StructureStorage:   1000000,
}

// World is a small in-process world engine. It implements world.Query,
// world.Commander and world.AgentSource. Commands take effect immediately on
// the engine state but agents only see them through the next Room call.
type World struct {
	mu sync.Mutex

	name         string
	tick         int64
	harvestPower int
	buildPower   int
	upgradePower int
	sourceRegen  int

	rooms     map[string]*roomState
	roomOrder []string
	agents    []*Agent
	byName    map[string]*Agent
}

type roomState struct {
	name       string
	sources    []*sourceState
	structures []world.Structure
	sites      []world.ConstructionSite
	controller *world.Controller
}

type sourceState struct {
	source   world.Source
	capacity int
}

// Agent is an agent living in the simulated world
type Agent struct {
	name  string
	pos   shared.Position
	store *shared.Store
	moved bool
}

func (a *Agent) Name() string { return a.name }
func (a *Agent) Pos() shared.Position { return a.pos }
func (a *Agent) Store() *shared.Store { return a.store }

// NewWorld builds the engine state from a validated scenario
func NewWorld(s *Scenario) (*World, error) {
	w := &World{
		name:         s.Name,
		harvestPower: s.HarvestPower,
		buildPower:   s.BuildPower,
		upgradePower: s.UpgradePower,
		sourceRegen:  s.SourceRegen,
		rooms:        make(map[string]*roomState, len(s.Rooms)),
		byName:       make(map[string]*Agent, len(s.Agents)),
	}

	for _, rs := range s.Rooms {
		room := &roomState{name: rs.Name}
		for _, src := range rs.Sources {
			room.sources = append(room.sources, &sourceState{
				source:   world.Source{ID: src.ID, Pos: pos(src.X, src.Y, rs.Name), Energy: src.Energy},
				capacity: src.Capacity,
			})
		}
		for _, st := range rs.Structures {
			store, err := energyStore(st.Capacity, st.Energy)
			if err != nil {
				return nil, fmt.Errorf("structure %s: %w", st.ID, err)
			}
			room.structures = append(room.structures, world.Structure{
				ID:           st.ID,
				Kind:         world.StructureKind(st.Kind),
				Pos:          pos(st.X, st.Y, rs.Name),
				Store:        store,
				Transferable: !st.Locked,
			})
		}
		for _, site := range rs.Sites {
			room.sites = append(room.sites, world.ConstructionSite{
				ID:            site.ID,
				Kind:          world.StructureKind(site.Kind),
				Pos:           pos(site.X, site.Y, rs.Name),
				Progress:      site.Progress,
				ProgressTotal: site.Total,
			})
		}
		if c := rs.Controller; c != nil {
			room.controller = &world.Controller{
				ID:            c.ID,
				Pos:           pos(c.X, c.Y, rs.Name),
				Level:         c.Level,
				Progress:      c.Progress,
				ProgressTotal: c.Total,
			}
		}
		w.rooms[rs.Name] = room
		w.roomOrder = append(w.roomOrder, rs.Name)
	}

	for _, ag := range s.Agents {
		store, err := energyStore(ag.Capacity, ag.Energy)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", ag.Name, err)
		}
		a := &Agent{name: ag.Name, pos: pos(ag.X, ag.Y, ag.Room), store: store}
		w.agents = append(w.agents, a)
		w.byName[a.name] = a
	}

	return w, nil
}

func pos(x, y int, room string) shared.Position {
	return shared.Position{X: x, Y: y, Room: room}
}

func energyStore(capacity, energy int) (*shared.Store, error) {
	return shared.NewStore(capacity, map[shared.ResourceKind]int{shared.ResourceEnergy: energy})
}

// Tick returns the number of completed ticks
func (w *World) Tick() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Advance ends the current tick: sources regenerate and agents may move again
func (w *World) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	for _, name := range w.roomOrder {
		for _, src := range w.rooms[name].sources {
			src.source.Energy = min(src.capacity, src.source.Energy+w.sourceRegen)
		}
	}
	for _, a := range w.agents {
		a.moved = false
	}
}

// Agents lists the agents in scenario order
func (w *World) Agents(ctx context.Context) ([]world.Agent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]world.Agent, len(w.agents))
	for i, a := range w.agents {
		out[i] = a
	}
	return out, nil
}

// Room returns a snapshot of the agent's room
func (w *World) Room(ctx context.Context, a world.Agent) (world.Room, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	room, ok := w.rooms[a.Pos().Room]
	if !ok {
		return nil, shared.NewRoomNotVisibleError(a.Name(), a.Pos().Room)
	}
	return room.snapshot(), nil
}

func (w *World) Harvest(ctx context.Context, a world.Agent, source world.Source) world.ReturnCode {
	w.mu.Lock()
	defer w.mu.Unlock()

	self, room, code := w.resolve(a)
	if code != world.OK {
		return code
	}
	src := room.findSource(source.ID)
	if src == nil {
		return world.ErrInvalidTarget
	}
	if !self.pos.InRangeTo(src.source.Pos, harvestRange) {
		return world.ErrNotInRange
	}
	if self.store.FreeCapacity(shared.ResourceEnergy) == 0 {
		return world.ErrFull
	}
	if src.source.Energy == 0 {
		return world.ErrNotEnoughResources
	}

	amount := min(w.harvestPower, src.source.Energy)
	accepted := self.store.Add(shared.ResourceEnergy, amount)
	src.source.Energy -= accepted
	return world.OK
}

func (w *World) Transfer(ctx context.Context, a world.Agent, target world.Structure, resource shared.ResourceKind, amount *int) world.ReturnCode {
	w.mu.Lock()
	defer w.mu.Unlock()

	self, room, code := w.resolve(a)
	if code != world.OK {
		return code
	}
	idx := room.findStructure(target.ID)
	if idx < 0 {
		return world.ErrInvalidTarget
	}
	st := room.structures[idx]
	if !st.Transferable || st.Store == nil {
		return world.ErrInvalidTarget
	}
	if !self.pos.InRangeTo(st.Pos, transferRange) {
		return world.ErrNotInRange
	}

	held := self.store.UsedCapacity(&resource)
	want := held
	if amount != nil {
		if *amount <= 0 {
			return world.ErrInvalidArgs
		}
		want = *amount
	}
	if want > held || held == 0 {
		return world.ErrNotEnoughResources
	}
	if st.Store.FreeCapacity(resource) == 0 {
		return world.ErrFull
	}

	moved := st.Store.Add(resource, want)
	self.store.Remove(resource, moved)
	return world.OK
}

func (w *World) Build(ctx context.Context, a world.Agent, site world.ConstructionSite) world.ReturnCode {
	w.mu.Lock()
	defer w.mu.Unlock()

	self, room, code := w.resolve(a)
	if code != world.OK {
		return code
	}
	idx := room.findSite(site.ID)
	if idx < 0 {
		return world.ErrInvalidTarget
	}
	s := &room.sites[idx]
	if !self.pos.InRangeTo(s.Pos, buildRange) {
		return world.ErrNotInRange
	}
	energy := self.store.UsedCapacity(ptr(shared.ResourceEnergy))
	if energy == 0 {
		return world.ErrNotEnoughResources
	}

	spent := min(w.buildPower, energy, s.ProgressTotal-s.Progress)
	self.store.Remove(shared.ResourceEnergy, spent)
	s.Progress += spent
	if s.Progress >= s.ProgressTotal {
		room.complete(idx)
	}
	return world.OK
}

func (w *World) UpgradeController(ctx context.Context, a world.Agent, controller world.Controller) world.ReturnCode {
	w.mu.Lock()
	defer w.mu.Unlock()

	self, room, code := w.resolve(a)
	if code != world.OK {
		return code
	}
	c := room.controller
	if c == nil || c.ID != controller.ID {
		return world.ErrInvalidTarget
	}
	if !self.pos.InRangeTo(c.Pos, upgradeRange) {
		return world.ErrNotInRange
	}
	energy := self.store.UsedCapacity(ptr(shared.ResourceEnergy))
	if energy == 0 {
		return world.ErrNotEnoughResources
	}

	spent := min(w.upgradePower, energy)
	self.store.Remove(shared.ResourceEnergy, spent)
	c.Progress += spent
	for c.ProgressTotal > 0 && c.Progress >= c.ProgressTotal {
		c.Progress -= c.ProgressTotal
		c.Level++
	}
	return world.OK
}

// MoveTo advances the agent one tile toward target. Agents move at most once per tick.
func (w *World) MoveTo(ctx context.Context, a world.Agent, target shared.Position) world.ReturnCode {
	w.mu.Lock()
	defer w.mu.Unlock()

	self, _, code := w.resolve(a)
	if code != world.OK {
		return code
	}
	if target.Room != self.pos.Room {
		return world.ErrInvalidArgs
	}
	if self.moved {
		return world.ErrTired
	}
	self.pos = self.pos.StepToward(target)
	self.moved = true
	return world.OK
}

// resolve maps a handle back to engine state. Must be called with mu held.
func (w *World) resolve(a world.Agent) (*Agent, *roomState, world.ReturnCode) {
	self, ok := w.byName[a.Name()]
	if !ok {
		return nil, nil, world.ErrNotOwner
	}
	room, ok := w.rooms[self.pos.Room]
	if !ok {
		return nil, nil, world.ErrNotFound
	}
	return self, room, world.OK
}

func (r *roomState) findSource(id string) *sourceState {
	for _, s := range r.sources {
		if s.source.ID == id {
			return s
		}
	}
	return nil
}

func (r *roomState) findStructure(id string) int {
	for i, s := range r.structures {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *roomState) findSite(id string) int {
	for i, s := range r.sites {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// complete turns a finished site into an empty structure
func (r *roomState) complete(idx int) {
	site := r.sites[idx]
	r.sites = append(r.sites[:idx], r.sites[idx+1:]...)

	var store *shared.Store
	if capacity, ok := energyCapacityByKind[site.Kind]; ok {
		store, _ = energyStore(capacity, 0)
	}
	r.structures = append(r.structures, world.Structure{
		ID:           site.ID,
		Kind:         site.Kind,
		Pos:          site.Pos,
		Store:        store,
		Transferable: store != nil,
	})
}

func ptr[T any](v T) *T { return &v }
