package shared

import "fmt"

// Position is an immutable tile coordinate inside a named room
type Position struct {
	X    int    `json:"x" yaml:"x"`
	Y    int    `json:"y" yaml:"y"`
	Room string `json:"room" yaml:"room"`
}

// NewPosition creates a position with validation
func NewPosition(x, y int, room string) (Position, error) {
	if room == "" {
		return Position{}, NewValidationError("room", "cannot be empty")
	}
	return Position{X: x, Y: y, Room: room}, nil
}

// RangeTo returns the Chebyshev distance to other, or -1 when the rooms differ
func (p Position) RangeTo(other Position) int {
	if p.Room != other.Room {
		return -1
	}
	return max(abs(p.X-other.X), abs(p.Y-other.Y))
}

// InRangeTo reports whether other lies within r tiles in the same room
func (p Position) InRangeTo(other Position, r int) bool {
	d := p.RangeTo(other)
	return d >= 0 && d <= r
}

// IsNearTo reports adjacency: same room and at most one tile away (diagonals count)
func (p Position) IsNearTo(other Position) bool {
	return p.InRangeTo(other, 1)
}

// StepToward returns the position one tile closer to target.
// Positions in another room are returned unchanged.
func (p Position) StepToward(target Position) Position {
	if p.Room != target.Room {
		return p
	}
	return Position{X: p.X + sign(target.X-p.X), Y: p.Y + sign(target.Y-p.Y), Room: p.Room}
}

func (p Position) String() string {
	return fmt.Sprintf("[%s %d,%d]", p.Room, p.X, p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
