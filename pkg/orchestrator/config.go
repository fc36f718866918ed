package orchestrator

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
)

// defaultOptimizerMinTraces is the minimum number of closed traces an
// AgentKind must have accumulated this round before the LLM Optimizer is
// consulted for it at all.
const defaultOptimizerMinTraces = 5

// ProblemSpec is one entry of a run's fixed problem list: the immutable
// context every stage's agent and trace share, plus the ground truth the
// oracle judges submissions against.
type ProblemSpec struct {
	Context     domain.ProblemContext
	GroundTruth any
}

// RunConfig parameterizes a single Orchestrator.Run call.
type RunConfig struct {
	// OutputRoot is the base directory a fresh run root is created under.
	// Ignored if RunRootPath is set.
	OutputRoot string
	// RunRootPath, if set, is used verbatim as the run root instead of
	// generating a timestamped name under OutputRoot — used by tests and
	// by an operator resuming a specific run directory.
	RunRootPath string

	// Problems is the fixed, ordered list exercised every round.
	Problems []ProblemSpec

	// Rounds is the last round number to run, inclusive.
	Rounds int
	// StartRound is the first round number to run; defaults to 1. Values
	// above 1 skip the points-reset step and instead copy forward the
	// prior round's points, per ResumeFromPointsDir when that prior round
	// was not produced by this same process.
	StartRound int

	// ResumeFromPointsDir, ResumeFromPromptsDir and ResumeFromVersions
	// seed the Point Manager and Generator before StartRound runs, for a
	// fresh process resuming someone else's (or an earlier invocation's)
	// run directory. Leave zero-valued when StartRound == 1, or when
	// resuming within the same process that ran the prior round.
	ResumeFromPointsDir  string
	ResumeFromPromptsDir string
	ResumeFromVersions   map[domain.AgentKind]string

	InterProblemDelay time.Duration
	InterRoundDelay   time.Duration

	// OptimizerMinTraces overrides defaultOptimizerMinTraces when > 0.
	OptimizerMinTraces int
	Reward             optimizer.RewardSpec
}

func (c RunConfig) startRound() int {
	if c.StartRound > 0 {
		return c.StartRound
	}
	return 1
}

func (c RunConfig) optimizerMinTraces() int {
	if c.OptimizerMinTraces > 0 {
		return c.OptimizerMinTraces
	}
	return defaultOptimizerMinTraces
}
