package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// GormAgentMemoryRepository persists agent memory fields in the agent_memory table.
// It implements agent.Memory.
type GormAgentMemoryRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormAgentMemoryRepository creates a new agent memory repository
// If clock is nil, uses RealClock (production behavior)
func NewGormAgentMemoryRepository(db *gorm.DB, clock shared.Clock) *GormAgentMemoryRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormAgentMemoryRepository{db: db, clock: clock}
}

// Int reads an integer field
func (r *GormAgentMemoryRepository) Int(ctx context.Context, agentName, field string) (int, bool, error) {
	raw, found, err := r.Get(ctx, agentName, field)
	if err != nil || !found {
		return 0, found, err
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, shared.NewMemoryDecodeError(agentName, field, raw, "int")
	}
	return value, true, nil
}

// SetInt writes an integer field
func (r *GormAgentMemoryRepository) SetInt(ctx context.Context, agentName, field string, value int) error {
	return r.Set(ctx, agentName, field, strconv.Itoa(value))
}

// Bool reads a boolean field
func (r *GormAgentMemoryRepository) Bool(ctx context.Context, agentName, field string) (bool, bool, error) {
	raw, found, err := r.Get(ctx, agentName, field)
	if err != nil || !found {
		return false, found, err
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, shared.NewMemoryDecodeError(agentName, field, raw, "bool")
	}
	return value, true, nil
}

// SetBool writes a boolean field
func (r *GormAgentMemoryRepository) SetBool(ctx context.Context, agentName, field string, value bool) error {
	return r.Set(ctx, agentName, field, strconv.FormatBool(value))
}

// Get returns the raw stored text of a field
func (r *GormAgentMemoryRepository) Get(ctx context.Context, agentName, field string) (string, bool, error) {
	var model AgentMemoryModel
	err := r.db.WithContext(ctx).
		Where("agent_name = ? AND field = ?", agentName, field).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read memory %s.%s: %w", agentName, field, err)
	}
	return model.Value, true, nil
}

// Set stores raw text for a field, replacing any previous value
func (r *GormAgentMemoryRepository) Set(ctx context.Context, agentName, field, raw string) error {
	model := &AgentMemoryModel{
		AgentName: agentName,
		Field:     field,
		Value:     raw,
		UpdatedAt: r.clock.Now(),
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_name"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to write memory %s.%s: %w", agentName, field, err)
	}

	return nil
}

// Fields returns every stored field of an agent
func (r *GormAgentMemoryRepository) Fields(ctx context.Context, agentName string) (map[string]string, error) {
	var models []AgentMemoryModel
	if err := r.db.WithContext(ctx).
		Where("agent_name = ?", agentName).
		Order("field ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list memory of %s: %w", agentName, err)
	}

	fields := make(map[string]string, len(models))
	for _, m := range models {
		fields[m.Field] = m.Value
	}
	return fields, nil
}

// Agents lists the names of all agents with stored memory
func (r *GormAgentMemoryRepository) Agents(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&AgentMemoryModel{}).
		Distinct("agent_name").
		Order("agent_name ASC").
		Pluck("agent_name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return names, nil
}

// Clear deletes every stored field of an agent and returns how many were removed
func (r *GormAgentMemoryRepository) Clear(ctx context.Context, agentName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("agent_name = ?", agentName).
		Delete(&AgentMemoryModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear memory of %s: %w", agentName, result.Error)
	}
	return result.RowsAffected, nil
}
