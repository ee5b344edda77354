package helpers

import (
	"context"
	"strconv"
	"sync"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// MemoryWrite records one write made through MockMemory
type MemoryWrite struct {
	Agent string
	Field string
	Value string
}

// MockMemory is an in-memory implementation of agent.Memory for testing.
// Values are kept as raw text, the same way the database adapter stores them,
// so tests can seed corrupt values.
type MockMemory struct {
	mu      sync.Mutex
	Values  map[string]map[string]string // key: agent name, then field
	Writes  []MemoryWrite
	ReadErr error
}

// NewMockMemory creates a new mock memory store
func NewMockMemory() *MockMemory {
	return &MockMemory{
		Values: make(map[string]map[string]string),
	}
}

// Seed stores a raw value without recording a write
func (m *MockMemory) Seed(agentName, field, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(agentName, field, raw)
}

// Raw returns the stored text for a field
func (m *MockMemory) Raw(agentName, field string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.Values[agentName][field]
	return raw, ok
}

// WritesTo returns the writes made to one field
func (m *MockMemory) WritesTo(agentName, field string) []MemoryWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MemoryWrite
	for _, w := range m.Writes {
		if w.Agent == agentName && w.Field == field {
			out = append(out, w)
		}
	}
	return out
}

func (m *MockMemory) Int(ctx context.Context, agentName, field string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return 0, false, m.ReadErr
	}
	raw, ok := m.Values[agentName][field]
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, shared.NewMemoryDecodeError(agentName, field, raw, "int")
	}
	return v, true, nil
}

func (m *MockMemory) SetInt(ctx context.Context, agentName, field string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := strconv.Itoa(value)
	m.put(agentName, field, raw)
	m.Writes = append(m.Writes, MemoryWrite{Agent: agentName, Field: field, Value: raw})
	return nil
}

func (m *MockMemory) Bool(ctx context.Context, agentName, field string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return false, false, m.ReadErr
	}
	raw, ok := m.Values[agentName][field]
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, shared.NewMemoryDecodeError(agentName, field, raw, "bool")
	}
	return v, true, nil
}

func (m *MockMemory) SetBool(ctx context.Context, agentName, field string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := strconv.FormatBool(value)
	m.put(agentName, field, raw)
	m.Writes = append(m.Writes, MemoryWrite{Agent: agentName, Field: field, Value: raw})
	return nil
}

func (m *MockMemory) put(agentName, field, raw string) {
	fields, ok := m.Values[agentName]
	if !ok {
		fields = make(map[string]string)
		m.Values[agentName] = fields
	}
	fields[field] = raw
}
