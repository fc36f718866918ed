package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global TracerProvider, matching the rest of this
// corpus: the Orchestrator never configures an exporter itself, so a
// process that doesn't call otel.SetTracerProvider gets the no-op
// tracer and these spans cost nothing beyond the call overhead.
var tracer = otel.Tracer("github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator")

// startRoundSpan opens one span covering a full round, tagged with the
// round number so a configured exporter can correlate spans with the
// round directories runRound writes to disk.
func startRoundSpan(ctx context.Context, round int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "orchestrator.round",
		trace.WithAttributes(attribute.Int("metalearn.round", round)))
}

// startProblemSpan opens one span covering a single problem's run across
// every AgentKind.
func startProblemSpan(ctx context.Context, problemID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "orchestrator.problem",
		trace.WithAttributes(attribute.String("metalearn.problem_id", problemID)))
}

// endSpan records err on span, if any, before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
