package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

func TestLifecycle_RunToCompletion(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l := shared.NewLifecycle(clock)

	assert.Equal(t, shared.LifecycleStatusPending, l.Status())
	assert.Zero(t, l.RuntimeDuration())

	require.NoError(t, l.Start())
	clock.Advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, l.RuntimeDuration())

	require.NoError(t, l.Complete())
	clock.Advance(time.Minute)
	assert.Equal(t, shared.LifecycleStatusCompleted, l.Status())
	assert.Equal(t, 30*time.Second, l.RuntimeDuration())
	assert.True(t, l.IsFinished())
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	l := shared.NewLifecycle(nil)

	assert.Error(t, l.Complete())
	require.NoError(t, l.Stop())
	assert.Error(t, l.Start())
	assert.Error(t, l.Stop())
	assert.Equal(t, shared.LifecycleStatusStopped, l.Status())
}
