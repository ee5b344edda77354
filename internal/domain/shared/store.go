package shared

import "fmt"

// ResourceKind identifies a resource that can be held in a store
type ResourceKind string

const (
	ResourceEnergy ResourceKind = "energy"
)

// Store is an inventory with a single shared capacity across resource kinds
type Store struct {
	Capacity int
	Contents map[ResourceKind]int
}

// NewStore creates a store with validation
func NewStore(capacity int, contents map[ResourceKind]int) (*Store, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("store capacity cannot be negative")
	}

	copied := make(map[ResourceKind]int, len(contents))
	total := 0
	for kind, units := range contents {
		if units < 0 {
			return nil, fmt.Errorf("store units of %s cannot be negative", kind)
		}
		copied[kind] = units
		total += units
	}
	if total > capacity {
		return nil, fmt.Errorf("store units %d exceed capacity %d", total, capacity)
	}

	return &Store{Capacity: capacity, Contents: copied}, nil
}

// UsedCapacity returns the units held of one resource, or of all resources when kind is nil
func (s *Store) UsedCapacity(kind *ResourceKind) int {
	if s == nil {
		return 0
	}
	if kind != nil {
		return s.Contents[*kind]
	}
	total := 0
	for _, units := range s.Contents {
		total += units
	}
	return total
}

// FreeCapacity returns how many more units of kind fit in the store
func (s *Store) FreeCapacity(kind ResourceKind) int {
	if s == nil {
		return 0
	}
	free := s.Capacity - s.UsedCapacity(nil)
	if free < 0 {
		return 0
	}
	return free
}

// Add stores up to units of kind and returns how many were accepted
func (s *Store) Add(kind ResourceKind, units int) int {
	accepted := min(units, s.FreeCapacity(kind))
	if accepted <= 0 {
		return 0
	}
	if s.Contents == nil {
		s.Contents = make(map[ResourceKind]int)
	}
	s.Contents[kind] += accepted
	return accepted
}

// Remove takes up to units of kind out of the store and returns how many were removed
func (s *Store) Remove(kind ResourceKind, units int) int {
	removed := min(units, s.UsedCapacity(&kind))
	if removed <= 0 {
		return 0
	}
	s.Contents[kind] -= removed
	return removed
}

// IsEmpty checks if the store holds nothing
func (s *Store) IsEmpty() bool {
	return s.UsedCapacity(nil) == 0
}

func (s *Store) String() string {
	return fmt.Sprintf("Store(%d/%d)", s.UsedCapacity(nil), s.Capacity)
}
