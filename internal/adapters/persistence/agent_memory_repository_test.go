package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/test/helpers"
)

var _ agent.Memory = (*persistence.GormAgentMemoryRepository)(nil)

func TestAgentMemoryRepository_MissingField(t *testing.T) {
	repo := persistence.NewGormAgentMemoryRepository(helpers.NewTestDB(t), nil)

	_, found, err := repo.Int(context.Background(), "harvester-1", agent.FieldActivity)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.Bool(context.Background(), "harvester-1", agent.FieldGathering)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAgentMemoryRepository_SetAndGet(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewGormAgentMemoryRepository(helpers.NewTestDB(t), nil)

	require.NoError(t, repo.SetInt(ctx, "harvester-1", agent.FieldActivity, 2))
	require.NoError(t, repo.SetBool(ctx, "harvester-1", agent.FieldGathering, true))

	task, found, err := repo.Int(ctx, "harvester-1", agent.FieldActivity)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, task)

	gathering, found, err := repo.Bool(ctx, "harvester-1", agent.FieldGathering)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, gathering)
}

func TestAgentMemoryRepository_UpsertReplacesValue(t *testing.T) {
	ctx := context.Background()
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormAgentMemoryRepository(db, clock)

	require.NoError(t, repo.SetInt(ctx, "builder-1", agent.FieldActivity, 3))
	clock.Advance(time.Minute)
	require.NoError(t, repo.SetInt(ctx, "builder-1", agent.FieldActivity, 0))

	var rows []persistence.AgentMemoryModel
	require.NoError(t, db.Where("agent_name = ?", "builder-1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "0", rows[0].Value)
	assert.True(t, rows[0].UpdatedAt.After(time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)))
}

func TestAgentMemoryRepository_DecodeErrors(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewGormAgentMemoryRepository(helpers.NewTestDB(t), nil)

	require.NoError(t, repo.Set(ctx, "harvester-1", agent.FieldActivity, "harvest"))
	require.NoError(t, repo.Set(ctx, "harvester-1", agent.FieldGathering, "sometimes"))

	_, found, err := repo.Int(ctx, "harvester-1", agent.FieldActivity)
	assert.True(t, found)
	var decodeErr *shared.MemoryDecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "harvest", decodeErr.Raw)
	assert.Equal(t, agent.FieldActivity, decodeErr.Field)

	_, found, err = repo.Bool(ctx, "harvester-1", agent.FieldGathering)
	assert.True(t, found)
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "sometimes", decodeErr.Raw)
}

func TestAgentMemoryRepository_FieldsAgentsClear(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewGormAgentMemoryRepository(helpers.NewTestDB(t), nil)

	require.NoError(t, repo.SetInt(ctx, "b", agent.FieldActivity, 1))
	require.NoError(t, repo.SetInt(ctx, "a", agent.FieldActivity, 2))
	require.NoError(t, repo.SetBool(ctx, "a", agent.FieldGathering, false))

	names, err := repo.Agents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	fields, err := repo.Fields(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{agent.FieldActivity: "2", agent.FieldGathering: "false"}, fields)

	removed, err := repo.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	fields, err = repo.Fields(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
