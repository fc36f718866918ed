package fake

import (
	"context"
	"sync"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
)

// ToolCaller is a scriptable adapters.ToolCaller: tests register a
// canned result per tool name; unregistered tools return a generic
// success so problem-pipeline fakes don't need to stub every call.
type ToolCaller struct {
	mu      sync.Mutex
	results map[string]*adapters.ToolCallResult
	Calls   []ToolCallRequest
}

// ToolCallRequest records one Call invocation for assertions.
type ToolCallRequest struct {
	Tool string
	Args map[string]any
}

// NewToolCaller creates a fake ToolCaller with the given tool->result map.
func NewToolCaller(results map[string]*adapters.ToolCallResult) *ToolCaller {
	if results == nil {
		results = make(map[string]*adapters.ToolCallResult)
	}
	return &ToolCaller{results: results}
}

func (c *ToolCaller) Call(_ context.Context, tool string, args map[string]any) (*adapters.ToolCallResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, ToolCallRequest{Tool: tool, Args: args})

	if result, ok := c.results[tool]; ok {
		return result, nil
	}
	return &adapters.ToolCallResult{Success: true, Response: "ok", Duration: 10 * time.Millisecond}, nil
}
