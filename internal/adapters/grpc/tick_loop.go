package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
	"github.com/andrescamacho/colonybot-go/internal/application/tick"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// TickLoop drives RunTickCommand in a background goroutine, paced by a rate limiter
type TickLoop struct {
	mediator mediator.Mediator
	limiter  *rate.Limiter
	maxTicks int64 // 0 runs until stopped
	onTick   func(tick int64)

	// consecutive failed ticks before the loop reports itself unhealthy
	failureThreshold int

	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}

	mu          sync.RWMutex
	lifecycle   *shared.Lifecycle
	tick        int64
	failures    int
	lastResult  *tick.RunTickResponse
	lastErr     error
	healthHooks []func(serving bool)
}

// NewTickLoop creates a loop issuing one tick per interval
func NewTickLoop(m mediator.Mediator, interval time.Duration, maxTicks int64) *TickLoop {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TickLoop{
		mediator:         m,
		limiter:          rate.NewLimiter(limit, 1),
		maxTicks:         maxTicks,
		failureThreshold: 3,
		lifecycle:        shared.NewLifecycle(nil),
		done:             make(chan struct{}),
	}
}

// OnTick registers a hook called before every tick with the tick number
func (l *TickLoop) OnTick(fn func(tick int64)) {
	l.onTick = fn
}

// OnHealthChange registers a hook called whenever serving state flips
func (l *TickLoop) OnHealthChange(fn func(serving bool)) {
	l.healthHooks = append(l.healthHooks, fn)
}

// Start runs the loop until ctx is cancelled, Stop is called or maxTicks is reached
func (l *TickLoop) Start(ctx context.Context) error {
	l.mu.Lock()
	err := l.lifecycle.Start()
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to start tick loop: %w", err)
	}

	l.ctx, l.cancelFunc = context.WithCancel(ctx)
	l.notifyHealth(true)
	go l.execute()
	return nil
}

// Stop cancels the loop and waits up to timeout for the current tick to finish
func (l *TickLoop) Stop(timeout time.Duration) error {
	if l.cancelFunc == nil {
		return nil
	}
	l.cancelFunc()

	select {
	case <-l.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("tick loop did not stop within %s", timeout)
	}
}

// Done is closed when the loop has exited
func (l *TickLoop) Done() <-chan struct{} {
	return l.done
}

// Status returns the lifecycle status and how long the loop has been running
func (l *TickLoop) Status() (shared.LifecycleStatus, time.Duration) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lifecycle.Status(), l.lifecycle.RuntimeDuration()
}

// Tick returns the number of ticks attempted
func (l *TickLoop) Tick() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tick
}

// LastResult returns the outcome of the most recent tick
func (l *TickLoop) LastResult() (*tick.RunTickResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastResult, l.lastErr
}

func (l *TickLoop) execute() {
	defer close(l.done)
	defer l.notifyHealth(false)
	defer l.finish()

	logger := logging.LoggerFromContext(l.ctx)

	for l.maxTicks == 0 || l.Tick() < l.maxTicks {
		if err := l.limiter.Wait(l.ctx); err != nil {
			// context cancelled while waiting
			return
		}

		l.mu.Lock()
		l.tick++
		current := l.tick
		l.mu.Unlock()

		if l.onTick != nil {
			l.onTick(current)
		}

		resp, err := l.mediator.Send(l.ctx, &tick.RunTickCommand{Tick: current})
		if l.ctx.Err() != nil {
			logger.Log(logging.LevelInfo, "Stop signal received", map[string]interface{}{"tick": current})
			return
		}

		result, _ := resp.(*tick.RunTickResponse)
		l.record(current, result, err, logger)
	}

	logger.Log(logging.LevelInfo, "Tick loop completed", map[string]interface{}{"ticks": l.Tick()})
}

// finish records how the loop ended
func (l *TickLoop) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		l.lifecycle.Stop()
	} else {
		l.lifecycle.Complete()
	}
}

func (l *TickLoop) record(current int64, result *tick.RunTickResponse, err error, logger logging.Logger) {
	l.mu.Lock()
	l.lastResult, l.lastErr = result, err
	wasHealthy := l.failures < l.failureThreshold
	if err != nil {
		l.failures++
	} else {
		l.failures = 0
	}
	healthy := l.failures < l.failureThreshold
	l.mu.Unlock()

	if err != nil {
		logger.Log(logging.LevelError, "Tick failed", map[string]interface{}{
			"tick":  current,
			"error": err.Error(),
		})
	}
	if healthy != wasHealthy {
		l.notifyHealth(healthy)
	}
}

func (l *TickLoop) notifyHealth(serving bool) {
	for _, fn := range l.healthHooks {
		fn(serving)
	}
}
