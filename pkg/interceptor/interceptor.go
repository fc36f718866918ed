// Package interceptor implements the Tool-Call Interceptor (C7): it wraps
// the external tool/MCP surface and records every call made through it
// into the currently-active trace.
package interceptor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/masking"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

// Interceptor wraps an adapters.ToolCaller and, unless disabled, records
// every call it routes into the trace the Orchestrator has marked active
// for the stage currently executing. The active trace id is set by the
// Orchestrator as it observes stage-transition signals from the agent
// runtime; the Interceptor never decides the active stage itself.
type Interceptor struct {
	caller  adapters.ToolCaller
	store   *trace.Store
	masker  *masking.Service
	enabled bool

	mu         sync.RWMutex
	activeByID string
}

// New creates an Interceptor over caller and store. When enabled is
// false, Call is a pure pass-through to caller with no recording. masker
// redacts secrets out of tool output before it is persisted into the
// trace; pass masking.NewService(false) to disable redaction outright.
func New(caller adapters.ToolCaller, store *trace.Store, masker *masking.Service, enabled bool) *Interceptor {
	return &Interceptor{caller: caller, store: store, masker: masker, enabled: enabled}
}

// SetActiveTrace marks traceID as the destination for subsequently
// recorded tool calls. Pass "" to stop recording (calls still pass
// through, just unrecorded) between stage transitions.
func (i *Interceptor) SetActiveTrace(traceID string) {
	i.mu.Lock()
	i.activeByID = traceID
	i.mu.Unlock()
}

func (i *Interceptor) activeTrace() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.activeByID
}

// Call times the underlying caller's invocation, and — when enabled and a
// trace is currently active — appends a ToolCall and a synthetic
// ThinkingStep summarizing it. The underlying error (if any) is returned
// to the caller unchanged after recording; a recording failure (e.g. the
// active trace was already closed) is folded into the returned error
// only when the call itself succeeded, so a tool failure is never masked
// by a bookkeeping failure.
func (i *Interceptor) Call(ctx context.Context, tool string, args map[string]any) (*adapters.ToolCallResult, error) {
	if !i.enabled {
		return i.caller.Call(ctx, tool, args)
	}

	started := time.Now()
	result, callErr := i.caller.Call(ctx, tool, args)
	duration := time.Since(started).Seconds()

	traceID := i.activeTrace()
	if traceID == "" {
		return result, callErr
	}

	call := domain.ToolCall{
		ToolName:  tool,
		Arguments: args,
		StartedAt: started,
		Duration:  duration,
	}
	if result != nil {
		call.Success = result.Success
		call.Response = result.Response
	}
	if callErr != nil {
		call.Response = callErr.Error()
	}
	if i.masker != nil {
		call.Response = i.masker.MaskToolResult(call.Response)
	}

	if err := i.store.AddToolCall(traceID, call); err != nil && callErr == nil {
		return result, fmt.Errorf("record tool call %s: %w", tool, err)
	}
	_ = i.store.AddThinkingStep(traceID, domain.ThinkingStep{
		Reasoning:  summarize(tool, call),
		ChosenTool: tool,
		Timestamp:  started,
	})

	return result, callErr
}

func summarize(tool string, call domain.ToolCall) string {
	if call.Success {
		return fmt.Sprintf("called %s successfully in %.2fs", tool, call.Duration)
	}
	return fmt.Sprintf("called %s, which did not succeed", tool)
}
