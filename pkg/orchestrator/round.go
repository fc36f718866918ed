package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

// roundConfig is everything runRound needs beyond the Orchestrator's own
// collaborators.
type roundConfig struct {
	Round           int
	RoundRoot       *storelayout.RoundRoot
	Problems        []ProblemSpec
	InterProblemGap time.Duration
	OptimizerMin    int
	Reward          optimizer.RewardSpec

	// PriorPromptsDir and PriorVersions describe the immediately
	// preceding round, consulted only by the fallback path when this
	// round's learning cycle produces nothing usable for an AgentKind.
	PriorPromptsDir string
	PriorConfigsDir string
	PriorVersions   map[domain.AgentKind]string
}

// runRound executes one full round: repoint the Trace Store at this
// round's traces directory, run every problem in order, batch-validate
// used points, run the learning cycle, and persist prompts/configs/points.
func (o *Orchestrator) runRound(ctx context.Context, rc roundConfig) (info RoundInfo, retErr error) {
	ctx, span := startRoundSpan(ctx, rc.Round)
	defer func() { endSpan(span, retErr) }()

	started := time.Now()
	info = RoundInfo{
		Round:      rc.Round,
		StartedAt:  started,
		PromptsDir: rc.RoundRoot.Prompts(),
		Versions:   make(map[domain.AgentKind]string, len(domain.AllAgentKinds())),
	}
	log := o.log.With("round", rc.Round)

	o.store.SetRoot(rc.RoundRoot.Traces())

	for i, problem := range rc.Problems {
		if err := ctx.Err(); err != nil {
			return o.finishRound(info, started, RoundFailed, err)
		}
		if err := o.runProblem(ctx, problem); err != nil {
			log.Error("problem run failed", "problem_id", problem.Context.ProblemID, "error", err)
			info.Notes = append(info.Notes, fmt.Sprintf("problem %s failed: %v", problem.Context.ProblemID, err))
		}
		info.ProblemsRun++

		if i < len(rc.Problems)-1 {
			if err := sleep(ctx, rc.InterProblemGap); err != nil {
				return o.finishRound(info, started, RoundFailed, err)
			}
		}
	}

	if err := o.validateRound(ctx); err != nil {
		log.Error("batch validation failed", "error", err)
		return o.finishRound(info, started, RoundFailed, fmt.Errorf("batch validation: %w", err))
	}

	notes, err := o.learn(ctx, learnConfig{
		RoundRoot:       rc.RoundRoot,
		OptimizerMin:    rc.OptimizerMin,
		Reward:          rc.Reward,
		PriorPromptsDir: rc.PriorPromptsDir,
		PriorConfigsDir: rc.PriorConfigsDir,
		PriorVersions:   rc.PriorVersions,
		Versions:        info.Versions,
	})
	info.Notes = append(info.Notes, notes...)
	if err != nil {
		log.Error("learning cycle failed", "error", err)
		return o.finishRound(info, started, RoundFailed, fmt.Errorf("learning cycle: %w", err))
	}

	if err := o.persistRound(rc.RoundRoot); err != nil {
		log.Error("persist round failed", "error", err)
		return o.finishRound(info, started, RoundFailed, fmt.Errorf("persist round: %w", err))
	}

	return o.finishRound(info, started, RoundOK, nil)
}

func (o *Orchestrator) finishRound(info RoundInfo, started time.Time, status RoundStatus, err error) (RoundInfo, error) {
	info.EndedAt = time.Now()
	info.DurationSeconds = info.EndedAt.Sub(started).Seconds()
	info.Status = status
	if err != nil {
		info.Error = err.Error()
	}
	return info, err
}

// persistRound saves every AgentKind's current learned point set into the
// round's points directory; prompts were already written by the learning
// cycle's Rebuild/RestorePriorVersion calls.
func (o *Orchestrator) persistRound(roundRoot *storelayout.RoundRoot) error {
	for _, kind := range domain.AllAgentKinds() {
		if err := o.points.Save(kind, roundRoot.Points()); err != nil {
			return fmt.Errorf("save points for %s: %w", kind, err)
		}
	}
	return nil
}
