package persistence

import (
	"time"
)

// AgentMemoryModel represents the agent_memory table.
// One row per agent field; values are stored as text and decoded on read.
type AgentMemoryModel struct {
	AgentName string    `gorm:"column:agent_name;primaryKey;not null"`
	Field     string    `gorm:"column:field;primaryKey;not null"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (AgentMemoryModel) TableName() string {
	return "agent_memory"
}

// TickLogModel represents the tick_logs table
type TickLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;index;not null"`
	AgentName string    `gorm:"column:agent_name;index"`
	Tick      int64     `gorm:"column:tick;not null;default:0"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (TickLogModel) TableName() string {
	return "tick_logs"
}

// AllModels lists every model managed by auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&AgentMemoryModel{},
		&TickLogModel{},
	}
}
