package orchestrator

import (
	"context"
	"errors"
	"testing"
)

func TestStartRoundSpan_EndSpanDoesNotPanicOnErrorOrNil(t *testing.T) {
	ctx := context.Background()

	_, span := startRoundSpan(ctx, 1)
	endSpan(span, errors.New("boom"))

	_, span = startProblemSpan(ctx, "p1")
	endSpan(span, nil)
}
