package config

import (
	"testing"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator"
)

func validConfig() *RunConfig {
	basePrompts := make(map[domain.AgentKind]string, len(domain.AllAgentKinds()))
	for _, k := range domain.AllAgentKinds() {
		basePrompts[k] = minimalPrompt
	}
	return &RunConfig{
		Orchestrator: orchestrator.RunConfig{
			OutputRoot: "./runs",
			Rounds:     1,
			Problems: []orchestrator.ProblemSpec{
				{Context: domain.ProblemContext{ProblemID: "p1"}},
			},
		},
		BasePrompts: basePrompts,
	}
}

func TestValidate_ValidConfig_Passes(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_ZeroRounds_Fails(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.Rounds = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for rounds <= 0")
	}
}

func TestValidate_NoOutputRootOrResume_Fails(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.OutputRoot = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error when neither output_root nor resume.run_root_path is set")
	}
}

func TestValidate_ResumeRunRootSubstitutesForOutputRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.OutputRoot = ""
	cfg.Orchestrator.RunRootPath = "/tmp/runs/run_20260731_000000"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_NoProblems_Fails(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.Problems = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an empty problem list")
	}
}

func TestValidate_DuplicateProblemIDs_Fails(t *testing.T) {
	cfg := validConfig()
	cfg.Orchestrator.Problems = append(cfg.Orchestrator.Problems, orchestrator.ProblemSpec{
		Context: domain.ProblemContext{ProblemID: "p1"},
	})
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for duplicate problem ids")
	}
}

func TestValidate_MissingBasePromptForAKind_Fails(t *testing.T) {
	cfg := validConfig()
	delete(cfg.BasePrompts, domain.Rollback)
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a missing base prompt")
	}
}
