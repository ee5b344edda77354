package sim

import (
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

// roomView is the immutable world.Room handed out for one observation
type roomView struct {
	name       string
	sources    []world.Source
	structures []world.Structure
	sites      []world.ConstructionSite
	controller *world.Controller
}

func (r *roomView) Name() string { return r.name }
func (r *roomView) Sources() []world.Source { return r.sources }
func (r *roomView) Structures() []world.Structure { return r.structures }
func (r *roomView) ConstructionSites() []world.ConstructionSite { return r.sites }

func (r *roomView) Controller() (*world.Controller, bool) {
	return r.controller, r.controller != nil
}

// snapshot copies the room state. Must be called with the world lock held.
func (r *roomState) snapshot() *roomView {
	view := &roomView{
		name:       r.name,
		sources:    make([]world.Source, len(r.sources)),
		structures: make([]world.Structure, len(r.structures)),
		sites:      append([]world.ConstructionSite(nil), r.sites...),
	}
	for i, s := range r.sources {
		view.sources[i] = s.source
	}
	for i, st := range r.structures {
		st.Store = cloneStore(st.Store)
		view.structures[i] = st
	}
	if r.controller != nil {
		c := *r.controller
		view.controller = &c
	}
	return view
}

func cloneStore(s *shared.Store) *shared.Store {
	if s == nil {
		return nil
	}
	contents := make(map[shared.ResourceKind]int, len(s.Contents))
	for k, v := range s.Contents {
		contents[k] = v
	}
	return &shared.Store{Capacity: s.Capacity, Contents: contents}
}

// AgentStatus is a printable view of one agent
type AgentStatus struct {
	Name     string
	Pos      shared.Position
	Energy   int
	Capacity int
}

// RoomStatus is a printable view of one room
type RoomStatus struct {
	Name               string
	SourceEnergy       int
	StoredEnergy       int
	SitesRemaining     int
	ControllerLevel    int
	ControllerProgress int
}

// Status summarizes the world for CLI output
type Status struct {
	Scenario string
	Tick     int64
	Rooms    []RoomStatus
	Agents   []AgentStatus
}

// Status returns a summary of the current engine state
func (w *World) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := Status{Scenario: w.name, Tick: w.tick}
	for _, name := range w.roomOrder {
		r := w.rooms[name]
		rs := RoomStatus{Name: name, SitesRemaining: len(r.sites)}
		for _, src := range r.sources {
			rs.SourceEnergy += src.source.Energy
		}
		for _, s := range r.structures {
			rs.StoredEnergy += s.Store.UsedCapacity(ptr(shared.ResourceEnergy))
		}
		if r.controller != nil {
			rs.ControllerLevel = r.controller.Level
			rs.ControllerProgress = r.controller.Progress
		}
		st.Rooms = append(st.Rooms, rs)
	}
	for _, a := range w.agents {
		st.Agents = append(st.Agents, AgentStatus{
			Name:     a.name,
			Pos:      a.pos,
			Energy:   a.store.UsedCapacity(ptr(shared.ResourceEnergy)),
			Capacity: a.store.Capacity,
		})
	}
	return st
}
