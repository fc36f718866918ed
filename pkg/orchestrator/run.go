package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

// Run drives the full multi-round learning loop described by cfg:
// create the run root, reset or carry forward points into round
// StartRound, then for each round in turn run every problem, validate
// used points, run the learning cycle, and persist the round before
// moving on. Returns the accumulated RunSummary even when a later round
// fails, so callers can inspect what did complete.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunSummary, error) {
	runRoot, err := o.openRunRoot(cfg)
	if err != nil {
		return nil, err
	}
	summary := &RunSummary{RunRoot: runRoot.Path}

	start := cfg.startRound()
	if start != 1 {
		if cfg.ResumeFromPointsDir != "" {
			if err := o.loadPriorPoints(cfg.ResumeFromPointsDir); err != nil {
				return summary, fmt.Errorf("load resume points: %w", err)
			}
		}
		for kind, version := range cfg.ResumeFromVersions {
			if err := o.generator.SeedVersion(kind, version); err != nil {
				return summary, fmt.Errorf("seed resume version: %w", err)
			}
		}
	}

	priorPointsDir := ""
	priorPromptsDir := cfg.ResumeFromPromptsDir
	priorConfigsDir := ""
	priorVersions := make(map[domain.AgentKind]string, len(domain.AllAgentKinds()))

	for round := start; round <= cfg.Rounds; round++ {
		roundRoot, err := storelayout.NewRoundRoot(runRoot, round)
		if err != nil {
			return summary, fmt.Errorf("create round %d: %w", round, err)
		}

		switch {
		case round == 1:
			if err := o.generator.Reset(roundRoot.Prompts()); err != nil {
				return summary, fmt.Errorf("reset points and prompts: %w", err)
			}
		default:
			src := priorPointsDir
			if src == "" {
				src = cfg.ResumeFromPointsDir
			}
			if src != "" {
				if err := storelayout.CopyPointsDir(src, roundRoot.Points()); err != nil {
					return summary, fmt.Errorf("copy points into round %d: %w", round, err)
				}
			}
		}

		info, roundErr := o.runRound(ctx, roundConfig{
			Round:           round,
			RoundRoot:       roundRoot,
			Problems:        cfg.Problems,
			InterProblemGap: cfg.InterProblemDelay,
			OptimizerMin:    cfg.optimizerMinTraces(),
			Reward:          cfg.Reward,
			PriorPromptsDir: priorPromptsDir,
			PriorConfigsDir: priorConfigsDir,
			PriorVersions:   priorVersions,
		})
		summary.Rounds = append(summary.Rounds, info)

		if err := writeRoundInfo(roundRoot, info); err != nil {
			o.log.Warn("failed to persist round_info", "round", round, "error", err)
		}
		if o.onRound != nil {
			o.onRound(info)
		}

		if roundErr != nil {
			return summary, fmt.Errorf("round %d: %w", round, roundErr)
		}

		priorPointsDir = roundRoot.Points()
		priorPromptsDir = roundRoot.Prompts()
		priorConfigsDir = roundRoot.Configs()
		priorVersions = info.Versions

		if round < cfg.Rounds {
			if err := sleep(ctx, cfg.InterRoundDelay); err != nil {
				return summary, fmt.Errorf("inter-round delay: %w", err)
			}
		}
	}

	return summary, nil
}

func (o *Orchestrator) openRunRoot(cfg RunConfig) (*storelayout.RunRoot, error) {
	if cfg.RunRootPath != "" {
		return storelayout.NewRunRootAt(cfg.RunRootPath)
	}
	return storelayout.NewRunRoot(cfg.OutputRoot, time.Now())
}

// loadPriorPoints seeds the Point Manager for every AgentKind from dir,
// used when resuming a run whose earlier rounds ran in a different
// process.
func (o *Orchestrator) loadPriorPoints(dir string) error {
	for _, kind := range domain.AllAgentKinds() {
		if err := o.points.Load(kind, dir); err != nil {
			return fmt.Errorf("load points for %s: %w", kind, err)
		}
	}
	return nil
}

func writeRoundInfo(roundRoot *storelayout.RoundRoot, info RoundInfo) error {
	return storelayout.WriteJSONAtomic(roundRoot.RoundInfoPath(), info)
}
