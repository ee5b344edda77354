package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
)

func TestDecodeTask_KnownCodes(t *testing.T) {
	cases := map[int]agent.Task{
		0: agent.TaskIdle,
		1: agent.TaskConquer,
		2: agent.TaskHarvest,
		3: agent.TaskBuild,
	}

	for code, want := range cases {
		got, ok := agent.DecodeTask(code)
		assert.True(t, ok, "code %d", code)
		assert.Equal(t, want, got)
		assert.Equal(t, code, got.Code())
	}
}

func TestDecodeTask_OutOfRangeDefaultsToIdle(t *testing.T) {
	for _, code := range []int{-1, 4, 42, 1 << 20} {
		got, ok := agent.DecodeTask(code)
		assert.False(t, ok, "code %d", code)
		assert.Equal(t, agent.TaskIdle, got)
	}
}

func TestParseTask_Aliases(t *testing.T) {
	cases := map[string]agent.Task{
		"idle":     agent.TaskIdle,
		"Chill":    agent.TaskIdle,
		"conquer":  agent.TaskConquer,
		"UPGRADE":  agent.TaskConquer,
		"harvest":  agent.TaskHarvest,
		" deposit": agent.TaskHarvest,
		"build":    agent.TaskBuild,
	}

	for name, want := range cases {
		got, err := agent.ParseTask(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := agent.ParseTask("repair")
	assert.Error(t, err)
}

func TestTask_String(t *testing.T) {
	assert.Equal(t, "harvest", agent.TaskHarvest.String())
	assert.Equal(t, "task(9)", agent.Task(9).String())
}
