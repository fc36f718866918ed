// Package adapters declares the thin external contracts (C8): cluster,
// fault injector, tool/MCP surface, oracle, LLM backend,
// and the task-agent runtime. Everything in this package is an interface
// (plus small supporting value types) — production implementations live
// in pkg/llmclient (LLM) and the caller's own cluster/MCP wiring; test
// doubles live in pkg/adapters/fake.
package adapters

import (
	"context"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Message is one turn of a chat-style LLM request.
type Message struct {
	Role    string
	Content string
}

// LLM is the single abstract inference operation: given a message
// history and an optional system prompt, return inferred text.
// Implementations are configured out-of-band via environment (model,
// provider, API key, base URL, temperature, etc). Rate-limit errors MUST
// be reported as (or wrapping) apierrors.ErrRateLimited so callers can
// back off.
type LLM interface {
	Infer(ctx context.Context, messages []Message, systemPrompt *string) (string, error)
}

// Oracle judges a stage's submission against ground truth.
// Stage keys are normalized via domain.NormalizeStage before being passed
// here is the caller's responsibility.
type Oracle interface {
	Judge(ctx context.Context, stage string, submission string, groundTruth any) (*domain.OracleResult, error)
}

// ToolCallResult is what a ToolCaller.Call returns, before the Interceptor
// turns it into a domain.ToolCall.
type ToolCallResult struct {
	Success  bool
	Response string
	Duration time.Duration
}

// ToolCaller is the opaque tool/MCP surface the agents call through;
// the Tool-Call Interceptor hooks every call made through it.
type ToolCaller interface {
	Call(ctx context.Context, tool string, args map[string]any) (*ToolCallResult, error)
}

// ClusterController performs cluster-state actions and snapshots. The
// learning core only calls through this interface; executing Kubernetes
// actions is the caller's concern.
type ClusterController interface {
	Apply(ctx context.Context, action string, params map[string]any) error
	Snapshot(ctx context.Context, namespace string) (map[string]any, error)
}

// FaultInjector injects and clears the synthetic faults problems are built
// around.
type FaultInjector interface {
	Inject(ctx context.Context, faultTag string, target map[string]any) error
	Clear(ctx context.Context) error
}

// RunResult is what an AgentRuntime.Run returns once a problem reaches a
// terminal state (Done or Failed).
type RunResult struct {
	// Reached lists the agent kinds the pipeline actually transitioned
	// through, in order.
	Reached []domain.AgentKind
	// FinalSubmissions holds each reached kind's final submission string,
	// handed to the Oracle by the Orchestrator.
	FinalSubmissions map[domain.AgentKind]string
	Failed           bool
	FailureReason    string
}

// AgentRuntime is the task-agent pipeline external collaborator the
// Learning Orchestrator drives per problem. onStageStart
// is invoked whenever control passes to a new stage, so the Orchestrator
// can repoint the Interceptor at that stage's trace.
type AgentRuntime interface {
	Run(ctx context.Context, problem domain.ProblemContext, onStageStart func(domain.AgentKind)) (*RunResult, error)
}
