package agent

import "context"

// Persisted memory fields of an agent
const (
	FieldActivity  = "activity"
	FieldGathering = "gathering"
)

// State is the decoded per-agent memory the controller works on
type State struct {
	Task      Task
	Gathering bool
}

// Memory is the persisted key/value store behind each agent's state.
//
// Reads report found=false for absent fields. A field that exists but cannot
// be decoded as the requested type yields *shared.MemoryDecodeError; any other
// error is an I/O failure of the store itself.
type Memory interface {
	Int(ctx context.Context, agentName, field string) (value int, found bool, err error)
	SetInt(ctx context.Context, agentName, field string, value int) error
	Bool(ctx context.Context, agentName, field string) (value bool, found bool, err error)
	SetBool(ctx context.Context, agentName, field string, value bool) error
}
