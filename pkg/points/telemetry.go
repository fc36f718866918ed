package points

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// meter uses the global MeterProvider, so a process that never calls
// otel.SetMeterProvider gets the no-op implementation and these
// increments cost only the call overhead.
var meter = otel.Meter("github.com/codeready-toolchain/tarsy-metalearn/pkg/points")

// validationOutcomeCounter counts every verification applied to a used
// point, tagged by AgentKind and outcome (success/failure). Created once
// lazily since Int64Counter can fail against a misbehaving custom
// MeterProvider; a nil counter just means recordValidationOutcome is a
// no-op, which is preferable to failing point validation over a metrics
// problem.
var validationOutcomeCounter, _ = meter.Int64Counter(
	"metalearn.points.validation_outcomes",
	metric.WithDescription("count of point verification checks, by agent kind and outcome"),
)

func recordValidationOutcome(kind domain.AgentKind, success bool) {
	if validationOutcomeCounter == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	validationOutcomeCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("agent_kind", string(kind)),
			attribute.String("outcome", outcome),
		))
}
