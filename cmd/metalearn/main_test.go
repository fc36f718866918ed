package main

import (
	"testing"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/config"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator"
)

func TestApplyFlagOverrides_OnlyNonZeroFlagsOverride(t *testing.T) {
	cfg := &config.RunConfig{
		Orchestrator: orchestrator.RunConfig{
			Rounds:            2,
			InterRoundDelay:   5 * time.Second,
			InterProblemDelay: time.Second,
		},
	}
	applyFlagOverrides(cfg, 0, 0, 0, 0, 0, 0, 0, "")

	if cfg.Orchestrator.Rounds != 2 {
		t.Errorf("rounds = %d, want unchanged 2", cfg.Orchestrator.Rounds)
	}
	if cfg.Orchestrator.InterRoundDelay != 5*time.Second {
		t.Errorf("inter-round delay = %v, want unchanged 5s", cfg.Orchestrator.InterRoundDelay)
	}
}

func TestApplyFlagOverrides_SetFlagsWin(t *testing.T) {
	cfg := &config.RunConfig{Orchestrator: orchestrator.RunConfig{Rounds: 2}}
	applyFlagOverrides(cfg, 7, 2*time.Second, 3*time.Second, 1.5, -0.5, -0.1, 4, "/runs/r/round_2/prompts")

	if cfg.Orchestrator.Rounds != 7 {
		t.Errorf("rounds = %d, want 7", cfg.Orchestrator.Rounds)
	}
	if cfg.Orchestrator.StartRound != 4 {
		t.Errorf("start round = %d, want 4", cfg.Orchestrator.StartRound)
	}
	if cfg.Orchestrator.Reward.SuccessWeight != 1.5 {
		t.Errorf("success weight = %v, want 1.5", cfg.Orchestrator.Reward.SuccessWeight)
	}
	if cfg.Orchestrator.ResumeFromPromptsDir != "/runs/r/round_2/prompts" {
		t.Errorf("resume prompts dir = %q", cfg.Orchestrator.ResumeFromPromptsDir)
	}
	if cfg.Orchestrator.ResumeFromPointsDir != "/runs/r/round_2/points" {
		t.Errorf("resume points dir = %q, want sibling points/ directory", cfg.Orchestrator.ResumeFromPointsDir)
	}
}
