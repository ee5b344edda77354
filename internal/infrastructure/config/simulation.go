package config

import "time"

// SimulationConfig controls the built-in simulated world and the tick loop
type SimulationConfig struct {
	// YAML scenario describing rooms, structures and agents
	Scenario string `mapstructure:"scenario"`

	// Compute budget for processing all agents of one tick
	TickBudget time.Duration `mapstructure:"tick_budget" validate:"required"`

	// Number of ticks `run` executes before exiting
	Ticks int `mapstructure:"ticks" validate:"min=1"`
}
