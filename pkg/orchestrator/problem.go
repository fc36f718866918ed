package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

// runProblem opens one live trace per AgentKind tied to problem's context,
// drives the agent runtime to completion routing tool events through the
// Interceptor as stage transitions arrive, and closes every stage's trace
// — in parallel, since closing a trace involves an independent oracle
// call per stage — with the oracle's verdict and the problem's ground
// truth. AgentKinds the runtime never reached are closed unsuccessful with
// no submission.
func (o *Orchestrator) runProblem(ctx context.Context, problem ProblemSpec) (retErr error) {
	ctx, span := startProblemSpan(ctx, problem.Context.ProblemID)
	defer func() { endSpan(span, retErr) }()

	traceIDs := make(map[domain.AgentKind]string, len(domain.AllAgentKinds()))
	for _, kind := range domain.AllAgentKinds() {
		id := trace.NewTraceID()
		if _, err := o.store.StartTrace(id, kind, problem.Context); err != nil {
			return fmt.Errorf("start trace for %s: %w", kind, err)
		}
		traceIDs[kind] = id
	}

	result, runErr := o.runtime.Run(ctx, problem.Context, func(kind domain.AgentKind) {
		o.interceptor.SetActiveTrace(traceIDs[kind])
	})
	o.interceptor.SetActiveTrace("")

	if result == nil {
		result = &adapters.RunResult{FinalSubmissions: map[domain.AgentKind]string{}}
	}
	reached := make(map[domain.AgentKind]bool, len(result.Reached))
	for _, k := range result.Reached {
		reached[k] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range domain.AllAgentKinds() {
		kind := kind
		id := traceIDs[kind]
		g.Go(func() error {
			return o.closeStageTrace(gctx, kind, id, problem, reached[kind], result.FinalSubmissions[kind])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}

// closeStageTrace judges a reached stage's submission against the
// problem's ground truth and closes its trace with the verdict. A stage
// never reached is closed unsuccessful with no submission and no oracle
// call. An oracle failure degrades the stage to unsuccessful rather than
// aborting the problem — one bad judge call shouldn't cost every other
// stage's learning signal.
func (o *Orchestrator) closeStageTrace(ctx context.Context, kind domain.AgentKind, traceID string, problem ProblemSpec, reached bool, submission string) error {
	if !reached {
		_, err := o.store.EndTrace(traceID, false, nil, problem.GroundTruth, nil)
		return err
	}

	verdict, err := o.oracle.Judge(ctx, string(kind), submission, problem.GroundTruth)
	if err != nil {
		o.log.Warn("oracle judge failed, treating stage as unsuccessful", "agent_kind", kind, "error", err)
		verdict = &domain.OracleResult{Success: false}
	}

	sub := submission
	_, endErr := o.store.EndTrace(traceID, verdict.Success, &sub, problem.GroundTruth,
		map[string]*domain.OracleResult{string(kind): verdict})
	return endErr
}
