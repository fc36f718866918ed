package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

type learnConfig struct {
	RoundRoot       *storelayout.RoundRoot
	OptimizerMin    int
	Reward          optimizer.RewardSpec
	PriorPromptsDir string
	PriorConfigsDir string
	PriorVersions   map[domain.AgentKind]string

	// Versions is filled in with the version each AgentKind ends this
	// round on.
	Versions map[domain.AgentKind]string
}

// learn runs the per-AgentKind learning cycle: analyzer-driven insights,
// then LLM-driven insights when enough traces accumulated, then rebuilds
// (or, on a round that produced nothing usable, restores the prior
// version) per the fallback policy. Also proposes and persists a scalar
// config-tuning pass per AgentKind, a lower-stakes operation that never
// fails the round.
func (o *Orchestrator) learn(ctx context.Context, cfg learnConfig) ([]string, error) {
	var notes []string

	for _, kind := range domain.AllAgentKinds() {
		kindNotes, err := o.learnKind(ctx, kind, cfg)
		notes = append(notes, kindNotes...)
		if err != nil {
			return notes, fmt.Errorf("learn for %s: %w", kind, err)
		}
	}
	return notes, nil
}

func (o *Orchestrator) learnKind(ctx context.Context, kind domain.AgentKind, cfg learnConfig) ([]string, error) {
	var notes []string

	traces, err := o.store.LoadTraces(trace.Filter{Kind: &kind})
	if err != nil {
		return notes, fmt.Errorf("load traces: %w", err)
	}

	patterns := o.analyzer.Analyze(traces)
	analyzerAdded, analyzerErr := o.generator.IngestPatterns(ctx, kind, patterns, time.Now)
	if analyzerErr != nil {
		o.log.Warn("analyzer ingestion failed", "agent_kind", kind, "error", analyzerErr)
		notes = append(notes, fmt.Sprintf("%s: analyzer ingestion failed: %v", kind, analyzerErr))
	}
	analyzerApplied := analyzerErr == nil && len(analyzerAdded) > 0

	llmApplied := false
	if len(traces) >= cfg.OptimizerMin {
		llmApplied, err = o.proposeInsights(ctx, kind, traces, patterns, cfg.Reward, &notes)
		if err != nil {
			return notes, err
		}
	} else {
		notes = append(notes, fmt.Sprintf("%s: below optimizer threshold (%d/%d traces), skipping LLM proposal", kind, len(traces), cfg.OptimizerMin))
	}

	version, err := o.rebuildOrFallback(kind, cfg, llmApplied, analyzerApplied, &notes)
	if err != nil {
		return notes, err
	}
	cfg.Versions[kind] = version

	o.proposeConfig(ctx, kind, traces, cfg, &notes)

	return notes, nil
}

// proposeInsights asks the LLM Optimizer for new insights and, on
// success, admits them through the Generator. Returns whether any insight
// was actually applied.
func (o *Orchestrator) proposeInsights(ctx context.Context, kind domain.AgentKind, traces []*trace.AgentTrace, patterns []analyzer.Pattern, reward optimizer.RewardSpec, notes *[]string) (bool, error) {
	pctx := optimizer.ProposalContext{
		CurrentPrompt:      o.generator.CurrentPrompt(kind),
		Patterns:           patterns,
		ExistingInsights:   existingInsights(o.points.Points(kind)),
		Reward:             reward,
		OverallSuccessRate: overallSuccessRate(traces),
	}

	resp, success, err := o.optimizer.Propose(ctx, kind, traces, pctx)
	if err != nil {
		o.log.Warn("LLM optimizer call failed", "agent_kind", kind, "error", err)
		*notes = append(*notes, fmt.Sprintf("%s: LLM optimizer call failed: %v", kind, err))
		return false, nil
	}
	if !success {
		*notes = append(*notes, fmt.Sprintf("%s: LLM optimizer exhausted retries without a parseable response", kind))
		return false, nil
	}

	added, ingestErr := o.generator.IngestInsights(ctx, kind, resp.NewInsights, time.Now)
	if ingestErr != nil {
		o.log.Warn("LLM insight ingestion failed", "agent_kind", kind, "error", ingestErr)
		*notes = append(*notes, fmt.Sprintf("%s: LLM insight ingestion failed: %v", kind, ingestErr))
		return false, nil
	}
	return len(added) > 0, nil
}

// rebuildOrFallback applies the fallback policy: rebuild when either
// source produced something usable; otherwise restore the prior round's
// version (or, lacking one, fall back to the base prompt via an ordinary
// rebuild of an empty active set).
func (o *Orchestrator) rebuildOrFallback(kind domain.AgentKind, cfg learnConfig, llmApplied, analyzerApplied bool, notes *[]string) (string, error) {
	if llmApplied || analyzerApplied {
		version, _, err := o.generator.Rebuild(kind, cfg.RoundRoot.Prompts())
		if err != nil {
			return "", fmt.Errorf("rebuild prompt: %w", err)
		}
		return version, nil
	}

	priorVersion := cfg.PriorVersions[kind]
	if cfg.PriorPromptsDir == "" || priorVersion == "" {
		*notes = append(*notes, fmt.Sprintf("%s: no prior version to restore, keeping base prompt", kind))
		version, _, err := o.generator.Rebuild(kind, cfg.RoundRoot.Prompts())
		if err != nil {
			return "", fmt.Errorf("rebuild base prompt: %w", err)
		}
		return version, nil
	}

	*notes = append(*notes, fmt.Sprintf("%s: neither analyzer nor LLM produced a usable prompt, restoring version %s", kind, priorVersion))
	version, err := o.generator.RestorePriorVersion(kind, cfg.PriorPromptsDir, cfg.RoundRoot.Prompts(), priorVersion)
	if err != nil {
		return "", fmt.Errorf("restore prior version: %w", err)
	}
	return version, nil
}

// proposeConfig runs the parallel, lower-stakes config-tuning pass: a
// failure here is logged and noted but never fails the round.
func (o *Orchestrator) proposeConfig(ctx context.Context, kind domain.AgentKind, traces []*trace.AgentTrace, cfg learnConfig, notes *[]string) {
	existing := loadConfig(cfg.PriorConfigsDir, kind)

	merged, success, err := o.optimizer.ProposeConfig(ctx, kind, traces, existing)
	if err != nil {
		o.log.Warn("config proposal failed", "agent_kind", kind, "error", err)
		*notes = append(*notes, fmt.Sprintf("%s: config proposal failed: %v", kind, err))
		merged = existing
	} else if !success {
		*notes = append(*notes, fmt.Sprintf("%s: config proposal exhausted retries, keeping prior config", kind))
		merged = existing
	}

	path := storelayout.ConfigFilePath(cfg.RoundRoot.Configs(), string(kind))
	if err := storelayout.WriteJSONAtomic(path, merged); err != nil {
		o.log.Warn("failed to persist config", "agent_kind", kind, "error", err)
	}
}

func loadConfig(configsDir string, kind domain.AgentKind) map[string]any {
	if configsDir == "" {
		return map[string]any{}
	}
	var cfg map[string]any
	if err := storelayout.ReadJSON(storelayout.ConfigFilePath(configsDir, string(kind)), &cfg); err != nil {
		return map[string]any{}
	}
	return cfg
}

// existingInsights reconstructs an advisory Insight list from a kind's
// already-learned points, so the LLM Optimizer's prompt can avoid
// proposing duplicates. The original InsightType is not recoverable from
// a PromptPoint, so every entry is tagged general; only Content is
// rendered into the prompt.
func existingInsights(pts []*points.PromptPoint) []points.Insight {
	var out []points.Insight
	for _, p := range pts {
		if p.Source == points.SourceLearned || p.Source == points.SourceMerged {
			out = append(out, points.Insight{Type: points.InsightGeneral, Content: p.Content})
		}
	}
	return out
}

// overallSuccessRate computes the stage-success rate over traces, feeding
// the Reward function's latency/attempts-shaping cutoff. Returns nil for
// an empty trace set, leaving shaping enabled by default.
func overallSuccessRate(traces []*trace.AgentTrace) *float64 {
	if len(traces) == 0 {
		return nil
	}
	successes := 0
	for _, t := range traces {
		if t.Success {
			successes++
		}
	}
	rate := float64(successes) / float64(len(traces))
	return &rate
}
