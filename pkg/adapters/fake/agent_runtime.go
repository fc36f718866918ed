package fake

import (
	"context"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Step is one scripted stage of an AgentRuntime run: which tools it calls
// (via the supplied ToolCaller, so traces pick them up) and what it
// eventually submits.
type Step struct {
	Kind       domain.AgentKind
	Tools      []string
	Submission string
}

// AgentRuntime is a scriptable adapters.AgentRuntime that walks a fixed
// sequence of Steps, invoking onStageStart for each and issuing the
// step's tool calls through an injected ToolCaller (so a Tool-Call
// Interceptor wired to the same stage sees them).
type AgentRuntime struct {
	Steps      []Step
	ToolCaller adapters.ToolCaller
	Fail       bool
	FailReason string
}

// NewAgentRuntime creates a fake AgentRuntime over steps, issuing tool
// calls through caller.
func NewAgentRuntime(caller adapters.ToolCaller, steps ...Step) *AgentRuntime {
	return &AgentRuntime{Steps: steps, ToolCaller: caller}
}

func (r *AgentRuntime) Run(ctx context.Context, _ domain.ProblemContext, onStageStart func(domain.AgentKind)) (*adapters.RunResult, error) {
	result := &adapters.RunResult{
		FinalSubmissions: make(map[domain.AgentKind]string),
	}
	for _, step := range r.Steps {
		onStageStart(step.Kind)
		result.Reached = append(result.Reached, step.Kind)
		for _, tool := range step.Tools {
			if _, err := r.ToolCaller.Call(ctx, tool, nil); err != nil {
				return result, err
			}
		}
		result.FinalSubmissions[step.Kind] = step.Submission
	}
	if r.Fail {
		result.Failed = true
		result.FailureReason = r.FailReason
	}
	return result, nil
}
