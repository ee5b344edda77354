package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BehaviorMetricsCollector handles dispatch, world command and tick metrics
type BehaviorMetricsCollector struct {
	dispatchTotal    *prometheus.CounterVec
	commandsTotal    *prometheus.CounterVec
	correctionsTotal *prometheus.CounterVec
	tickDuration     prometheus.Histogram
	tickAgents       *prometheus.CounterVec
}

// NewBehaviorMetricsCollector creates a new behavior metrics collector
func NewBehaviorMetricsCollector() *BehaviorMetricsCollector {
	return &BehaviorMetricsCollector{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_total",
				Help:      "Agent dispatches by task and gathering phase",
			},
			[]string{"task", "phase"},
		),

		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "world_commands_total",
				Help:      "World commands issued by verb and return code",
			},
			[]string{"verb", "code"},
		),

		correctionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "state_corrections_total",
				Help:      "Persisted tasks reset to idle, by reason",
			},
			[]string{"reason"},
		),

		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent processing all agents of one tick",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),

		tickAgents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_agents_total",
				Help:      "Agents handled per tick by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all behavior metrics with the Prometheus registry
func (c *BehaviorMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.dispatchTotal,
		c.commandsTotal,
		c.correctionsTotal,
		c.tickDuration,
		c.tickAgents,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *BehaviorMetricsCollector) RecordDispatch(task, phase string) {
	c.dispatchTotal.WithLabelValues(task, phase).Inc()
}

func (c *BehaviorMetricsCollector) RecordWorldCommand(verb, code string) {
	c.commandsTotal.WithLabelValues(verb, code).Inc()
}

func (c *BehaviorMetricsCollector) RecordStateCorrection(reason string) {
	c.correctionsTotal.WithLabelValues(reason).Inc()
}

func (c *BehaviorMetricsCollector) RecordTick(duration time.Duration, processed, skipped, failed int) {
	c.tickDuration.Observe(duration.Seconds())
	c.tickAgents.WithLabelValues("processed").Add(float64(processed))
	c.tickAgents.WithLabelValues("skipped").Add(float64(skipped))
	c.tickAgents.WithLabelValues("failed").Add(float64(failed))
}
