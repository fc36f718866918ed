package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

// validateRound identifies and validates used points for every closed
// trace written this round, one goroutine per AgentKind — safe because
// the Point Manager already guards each kind's state behind its own
// mutex, so this fan-out never contends across kinds.
func (o *Orchestrator) validateRound(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range domain.AllAgentKinds() {
		kind := kind
		g.Go(func() error {
			return o.validateKind(gctx, kind)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) validateKind(ctx context.Context, kind domain.AgentKind) error {
	traces, err := o.store.LoadTraces(trace.Filter{Kind: &kind})
	if err != nil {
		return fmt.Errorf("load traces for %s: %w", kind, err)
	}

	for _, t := range traces {
		used, err := o.points.IdentifyUsedPoints(ctx, kind, t)
		if err != nil {
			return fmt.Errorf("identify used points for %s trace %s: %w", kind, t.TraceID, err)
		}
		o.points.ValidateUsedPoints(kind, t, used, t.Success, time.Now)
	}
	return nil
}
