package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agentrt/runtime"

// Tracer returns the runtime's named tracer.
func Tracer() trace.Tracer { return otel.Tracer(tracerName) }

// StartDriverStep opens a span covering one Driver stream-then-execute
// iteration (spec SPEC_FULL.md: "Spans around one Driver recursion step
// and one Scheduler wave, for the trace the teacher's TracePlugin/event
// emitter produces").
func StartDriverStep(ctx context.Context, actionKey string, depth int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "agentrt.driver.step",
		trace.WithAttributes(
			attribute.String("action_key", actionKey),
			attribute.Int("depth", depth),
		),
	)
}

// StartSchedulerWave opens a span covering one Scheduler wave dispatch.
func StartSchedulerWave(ctx context.Context, waveSize int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "agentrt.scheduler.wave",
		trace.WithAttributes(attribute.Int("wave_size", waveSize)),
	)
}
