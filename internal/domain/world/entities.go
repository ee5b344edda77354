package world

import (
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// StructureKind is the structural category of a structure
type StructureKind string

const (
	StructureSpawn      StructureKind = "spawn"
	StructureExtension  StructureKind = "extension"
	StructureContainer  StructureKind = "container"
	StructureTower      StructureKind = "tower"
	StructureStorage    StructureKind = "storage"
	StructureRoad       StructureKind = "road"
	StructureWall       StructureKind = "wall"
	StructureController StructureKind = "controller"
)

// Source is an extractable energy node
type Source struct {
	ID     string
	Pos    shared.Position
	Energy int
}

// Structure is any built object in a room. Store is nil for structures that hold nothing.
type Structure struct {
	ID    string
	Kind  StructureKind
	Pos   shared.Position
	Store *shared.Store

	// Transferable is false when the world refuses incoming transfers
	// (hostile owner, structure being dismantled, ...)
	Transferable bool
}

// FreeEnergyCapacity returns how much energy the structure can still accept
func (s Structure) FreeEnergyCapacity() int {
	if s.Store == nil {
		return 0
	}
	return s.Store.FreeCapacity(shared.ResourceEnergy)
}

// ConstructionSite is a pending building
type ConstructionSite struct {
	ID            string
	Kind          StructureKind
	Pos           shared.Position
	Progress      int
	ProgressTotal int
}

// Controller is the room's controllable objective
type Controller struct {
	ID            string
	Pos           shared.Position
	Level         int
	Progress      int
	ProgressTotal int
}
