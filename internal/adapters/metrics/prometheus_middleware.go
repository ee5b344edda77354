package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
)

// PrometheusMiddleware records duration and outcome of every request that goes
// through the mediator. Request names are the bare type name, so
// "*behavior.ProcessAgentCommand" is recorded as "ProcessAgentCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := requestName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}

func requestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if idx := strings.LastIndex(fullName, "."); idx >= 0 {
		return fullName[idx+1:]
	}
	return fullName
}
