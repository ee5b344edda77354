package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/domain/world"
)

func structure(t *testing.T, id string, kind world.StructureKind, capacity, energy int) world.Structure {
	t.Helper()
	store, err := shared.NewStore(capacity, map[shared.ResourceKind]int{shared.ResourceEnergy: energy})
	require.NoError(t, err)
	return world.Structure{
		ID:           id,
		Kind:         kind,
		Pos:          shared.Position{X: 10, Y: 10, Room: "W1N1"},
		Store:        store,
		Transferable: true,
	}
}

func TestSelectDepositTarget(t *testing.T) {
	t.Run("extension beats spawn with more room", func(t *testing.T) {
		got, ok := SelectDepositTarget([]world.Structure{
			structure(t, "spawn", world.StructureSpawn, 300, 290),
			structure(t, "ext", world.StructureExtension, 50, 45),
		})
		require.True(t, ok)
		assert.Equal(t, "ext", got.Structure.ID)
		assert.Equal(t, 5, got.FreeEnergy)
		assert.Equal(t, tierExtension, got.Tier)
	})

	t.Run("container beats spawn", func(t *testing.T) {
		got, ok := SelectDepositTarget([]world.Structure{
			structure(t, "spawn", world.StructureSpawn, 300, 299),
			structure(t, "box", world.StructureContainer, 2000, 1997),
		})
		require.True(t, ok)
		assert.Equal(t, "box", got.Structure.ID)
	})

	t.Run("spawn when nothing else is eligible", func(t *testing.T) {
		got, ok := SelectDepositTarget([]world.Structure{
			structure(t, "full-ext", world.StructureExtension, 50, 50),
			structure(t, "spawn", world.StructureSpawn, 300, 299),
		})
		require.True(t, ok)
		assert.Equal(t, "spawn", got.Structure.ID)
		assert.Equal(t, tierSpawn, got.Tier)
	})

	t.Run("first encountered wins within a tier", func(t *testing.T) {
		got, ok := SelectDepositTarget([]world.Structure{
			structure(t, "tower", world.StructureTower, 1000, 0),
			structure(t, "box", world.StructureContainer, 2000, 0),
		})
		require.True(t, ok)
		assert.Equal(t, "tower", got.Structure.ID)

		got, ok = SelectDepositTarget([]world.Structure{
			structure(t, "box", world.StructureContainer, 2000, 0),
			structure(t, "tower", world.StructureTower, 1000, 0),
		})
		require.True(t, ok)
		assert.Equal(t, "box", got.Structure.ID)
	})

	t.Run("ineligible kinds and full structures are ignored", func(t *testing.T) {
		_, ok := SelectDepositTarget([]world.Structure{
			structure(t, "storage", world.StructureStorage, 10000, 0),
			structure(t, "road", world.StructureRoad, 0, 0),
			structure(t, "full-spawn", world.StructureSpawn, 300, 300),
		})
		assert.False(t, ok)
	})

	t.Run("empty room", func(t *testing.T) {
		_, ok := SelectDepositTarget(nil)
		assert.False(t, ok)
	})
}

func TestDepositTier(t *testing.T) {
	for kind, want := range map[world.StructureKind]int{
		world.StructureExtension: tierExtension,
		world.StructureContainer: tierBuffer,
		world.StructureTower:     tierBuffer,
		world.StructureSpawn:     tierSpawn,
	} {
		tier, ok := depositTier(kind)
		assert.True(t, ok, kind)
		assert.Equal(t, want, tier, kind)
	}

	_, ok := depositTier(world.StructureController)
	assert.False(t, ok)
}
