package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus is the state of a long-running loop
type LifecycleStatus string

const (
	LifecycleStatusPending   LifecycleStatus = "PENDING"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusStopped   LifecycleStatus = "STOPPED"
)

// Lifecycle tracks PENDING → RUNNING → COMPLETED/STOPPED transitions.
// It is not safe for concurrent use; owners guard it.
type Lifecycle struct {
	status    LifecycleStatus
	startedAt *time.Time
	stoppedAt *time.Time
	clock     Clock
}

// NewLifecycle creates a lifecycle in PENDING state
func NewLifecycle(clock Clock) *Lifecycle {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Lifecycle{status: LifecycleStatusPending, clock: clock}
}

// Status returns the current status
func (l *Lifecycle) Status() LifecycleStatus {
	return l.status
}

// Start transitions from PENDING to RUNNING
func (l *Lifecycle) Start() error {
	if l.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", l.status)
	}
	now := l.clock.Now()
	l.status = LifecycleStatusRunning
	l.startedAt = &now
	return nil
}

// Complete transitions from RUNNING to COMPLETED
func (l *Lifecycle) Complete() error {
	if l.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot complete from %s state", l.status)
	}
	l.finish(LifecycleStatusCompleted)
	return nil
}

// Stop transitions any unfinished lifecycle to STOPPED
func (l *Lifecycle) Stop() error {
	if l.IsFinished() {
		return fmt.Errorf("cannot stop from %s state", l.status)
	}
	l.finish(LifecycleStatusStopped)
	return nil
}

// IsFinished reports whether the lifecycle completed or was stopped
func (l *Lifecycle) IsFinished() bool {
	return l.status == LifecycleStatusCompleted || l.status == LifecycleStatusStopped
}

// RuntimeDuration is how long the lifecycle has been or was running; 0 before Start
func (l *Lifecycle) RuntimeDuration() time.Duration {
	if l.startedAt == nil {
		return 0
	}
	end := l.clock.Now()
	if l.stoppedAt != nil {
		end = *l.stoppedAt
	}
	return end.Sub(*l.startedAt)
}

func (l *Lifecycle) finish(status LifecycleStatus) {
	now := l.clock.Now()
	l.status = status
	l.stoppedAt = &now
}
