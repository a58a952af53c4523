package diagnostics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingSink starts one span per step under the given tracer. Because
// Diagnostics.Observe only sees the finished record, StartStep must be
// used instead to bracket the step itself — Observe alone can't reopen
// a span after the fact. The engine never calls StartStep: a host
// wraps its own Step call with it.
type TracingSink struct {
	Tracer trace.Tracer
}

// NewTracingSink wraps tracer as a step-bracketing helper.
func NewTracingSink(tracer trace.Tracer) *TracingSink {
	return &TracingSink{Tracer: tracer}
}

// StartStep opens a span named "fsm.step" and returns a function that
// closes it, recording the record's outcome.
func (t *TracingSink) StartStep(ctx context.Context, engineID string, event uint64) (context.Context, func(rec Record)) {
	if t == nil || t.Tracer == nil {
		return ctx, func(Record) {}
	}
	spanCtx, span := t.Tracer.Start(ctx, "fsm.step",
		trace.WithAttributes(
			attribute.String("fsm.engine_id", engineID),
			attribute.String("fsm.event", strconv.FormatUint(event, 10)),
		),
	)
	return spanCtx, func(rec Record) {
		span.SetAttributes(
			attribute.String("fsm.status", rec.Status),
			attribute.Bool("fsm.fault", rec.Fault),
		)
		if rec.Fault {
			span.SetStatus(codes.Error, "handler fault")
		}
		span.End()
	}
}

// Observe satisfies Diagnostics but is a no-op: tracing needs to
// bracket the step (see StartStep), not just react after it ends.
func (t *TracingSink) Observe(Record) {}
