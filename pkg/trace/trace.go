// Package trace implements the Trace Store (C1): the record-of-truth for
// agent executions within a learning round. Traces are created live,
// mutated append-only by the Tool-Call Interceptor and the agent runtime,
// finalized once via EndTrace, and persisted as one self-describing JSON
// file per trace under the round's traces/ directory.
package trace

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Metrics are the performance figures computed on EndTrace; ToolCallCount
// always equals len(ToolCalls).
type Metrics struct {
	DurationSeconds float64  `json:"duration_seconds"`
	ToolCallCount   int      `json:"tool_call_count"`
	ToolSuccessRate float64  `json:"tool_success_rate"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
}

// AgentTrace is the ordered record of a single agent's execution for a
// single problem stage. Owned by the Store: created by
// StartTrace, mutated only through Store operations until EndTrace, then
// read-only.
type AgentTrace struct {
	TraceID       string                          `json:"trace_id"`
	Kind          domain.AgentKind                `json:"agent_kind"`
	Problem       domain.ProblemContext           `json:"problem"`
	StartedAt     time.Time                       `json:"started_at"`
	EndedAt       *time.Time                      `json:"ended_at,omitempty"`
	Success       bool                            `json:"success"`
	FinalSubmission *string                       `json:"final_submission,omitempty"`
	ToolCalls     []domain.ToolCall               `json:"tool_calls"`
	ThinkingSteps []domain.ThinkingStep           `json:"thinking_steps"`
	Metrics       Metrics                         `json:"metrics"`
	GroundTruth   any                             `json:"ground_truth,omitempty"`
	OracleResults map[string]domain.EnhancedOracleResult `json:"oracle_results,omitempty"`

	// Error records the reason a trace was force-closed by cooperative
	// cancellation: "cancelled".
	Error string `json:"error,omitempty"`

	// closed is true once EndTrace has run; guards against further
	// mutation.
	closed bool
}

// Closed reports whether EndTrace has already run for this trace.
func (t *AgentTrace) Closed() bool { return t.closed }

// ToolNames returns the ordered list of tool names invoked in this trace.
func (t *AgentTrace) ToolNames() []string {
	names := make([]string, len(t.ToolCalls))
	for i, c := range t.ToolCalls {
		names[i] = c.ToolName
	}
	return names
}

// ToolSucceeded reports whether at least one call to toolName in this
// trace has Success=true, the tool-level success rule used-point
// validation applies for tool-related points.
func (t *AgentTrace) ToolSucceeded(toolName string) (called bool, succeeded bool) {
	for _, c := range t.ToolCalls {
		if c.ToolName == toolName {
			called = true
			if c.Success {
				return true, true
			}
		}
	}
	return called, false
}

// ReasoningText concatenates all thinking-step reasoning text, used by the
// heuristic used-point matcher.
func (t *AgentTrace) ReasoningText() string {
	s := ""
	for i, step := range t.ThinkingSteps {
		if i > 0 {
			s += " "
		}
		s += step.Reasoning
	}
	return s
}
