package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "colonybot"
	// Subsystem for controller metrics
	subsystem = "controller"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCollector is the singleton behavior metrics collector
	// Set by SetGlobalCollector() when metrics are enabled
	globalCollector BehaviorRecorder
)

// BehaviorRecorder defines the interface for recording controller events
// This interface is used by application code to record metrics
type BehaviorRecorder interface {
	RecordDispatch(task, phase string)
	RecordWorldCommand(verb, code string)
	RecordStateCorrection(reason string)
	RecordTick(duration time.Duration, processed, skipped, failed int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global behavior collector; nil disables recording
func SetGlobalCollector(collector BehaviorRecorder) {
	globalCollector = collector
}

// RecordDispatch records which task an agent ran and in which phase
func RecordDispatch(task, phase string) {
	if globalCollector != nil {
		globalCollector.RecordDispatch(task, phase)
	}
}

// RecordWorldCommand records a command issued to the world and its return code
func RecordWorldCommand(verb, code string) {
	if globalCollector != nil {
		globalCollector.RecordWorldCommand(verb, code)
	}
}

// RecordStateCorrection records a persisted task that had to be reset
func RecordStateCorrection(reason string) {
	if globalCollector != nil {
		globalCollector.RecordStateCorrection(reason)
	}
}

// RecordTick records the outcome of one full tick
func RecordTick(duration time.Duration, processed, skipped, failed int) {
	if globalCollector != nil {
		globalCollector.RecordTick(duration, processed, skipped, failed)
	}
}
