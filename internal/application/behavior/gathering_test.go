package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextGathering(t *testing.T) {
	tests := []struct {
		name       string
		gathering  bool
		used       int
		freeEnergy int
		want       bool
	}{
		{"spend phase empties", false, 0, 50, true},
		{"spend phase still carrying", false, 20, 30, false},
		{"spend phase full", false, 50, 0, false},
		{"gather phase fills up", true, 50, 0, false},
		{"gather phase partially filled", true, 20, 30, true},
		{"gather phase empty", true, 0, 50, true},
		// zero capacity: empty and full at once, the start boundary wins
		{"spend phase zero capacity", false, 0, 0, true},
		{"gather phase zero capacity", true, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextGathering(tt.gathering, tt.used, tt.freeEnergy))
		})
	}
}

func TestNextGathering_FlipsOnlyAtBoundaries(t *testing.T) {
	// capacity 50, energy level per tick
	levels := []int{30, 10, 0, 0, 20, 40, 50, 50, 30, 0, 10}
	want := []bool{false, false, true, true, true, true, false, false, false, true, true}

	gathering := false
	for i, level := range levels {
		gathering = nextGathering(gathering, level, 50-level)
		assert.Equalf(t, want[i], gathering, "tick %d at level %d", i, level)
	}
}
