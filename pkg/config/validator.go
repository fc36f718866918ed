package config

import (
	"fmt"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Validate checks a resolved RunConfig for the minimum a run needs to
// start: a positive round count, at least one problem, a base prompt
// for every AgentKind, and unique problem IDs.
func Validate(cfg *RunConfig) error {
	if cfg.Orchestrator.Rounds <= 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, NewValidationError("rounds", fmt.Errorf("must be > 0")))
	}
	if cfg.Orchestrator.OutputRoot == "" && cfg.Orchestrator.RunRootPath == "" {
		return fmt.Errorf("%w: %s", ErrValidationFailed, NewValidationError("output_root", fmt.Errorf("must be set unless resume.run_root_path is")))
	}
	if len(cfg.Orchestrator.Problems) == 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, NewValidationError("problems", fmt.Errorf("must not be empty")))
	}

	seen := make(map[string]bool, len(cfg.Orchestrator.Problems))
	for _, p := range cfg.Orchestrator.Problems {
		if seen[p.Context.ProblemID] {
			return fmt.Errorf("%w: %s", ErrValidationFailed, NewValidationError("problems[].problem_id", fmt.Errorf("duplicate id %q", p.Context.ProblemID)))
		}
		seen[p.Context.ProblemID] = true
	}

	for _, kind := range domain.AllAgentKinds() {
		if cfg.BasePrompts[kind] == "" {
			return fmt.Errorf("%w: %s", ErrValidationFailed, NewValidationError("base_prompts", fmt.Errorf("missing entry for %s", kind)))
		}
	}

	return nil
}
