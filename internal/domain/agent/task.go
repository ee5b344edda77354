package agent

import (
	"fmt"
	"strings"
)

// Task is the job an agent has been assigned. The set is closed: every
// persisted code outside the mapping below decodes to TaskIdle.
type Task int

// Persisted task codes, codec version 1. Codes are stored as integers and
// must never be renumbered; new tasks take the next free code.
const (
	TaskIdle    Task = 0
	TaskConquer Task = 1
	TaskHarvest Task = 2
	TaskBuild   Task = 3
)

// TaskCodecVersion identifies the integer mapping above
const TaskCodecVersion = 1

// DecodeTask maps a persisted code to a Task. ok is false for codes outside the mapping.
func DecodeTask(code int) (task Task, ok bool) {
	switch Task(code) {
	case TaskIdle, TaskConquer, TaskHarvest, TaskBuild:
		return Task(code), true
	default:
		return TaskIdle, false
	}
}

// Code returns the persisted integer code
func (t Task) Code() int {
	return int(t)
}

func (t Task) String() string {
	switch t {
	case TaskIdle:
		return "idle"
	case TaskConquer:
		return "conquer"
	case TaskHarvest:
		return "harvest"
	case TaskBuild:
		return "build"
	default:
		return fmt.Sprintf("task(%d)", int(t))
	}
}

// ParseTask accepts a task name or one of its aliases, case-insensitively
func ParseTask(name string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "idle", "chill":
		return TaskIdle, nil
	case "conquer", "upgrade":
		return TaskConquer, nil
	case "harvest", "deposit":
		return TaskHarvest, nil
	case "build":
		return TaskBuild, nil
	default:
		return TaskIdle, fmt.Errorf("unknown task %q (want idle, conquer, harvest or build)", name)
	}
}
