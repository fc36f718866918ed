package domain

import "time"

// ToolCall records one invocation of a tool against the MCP surface,
// appended to a trace by the Tool-Call Interceptor (C7). Append-only.
type ToolCall struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	StartedAt time.Time      `json:"started_at"`
	Success   bool           `json:"success"`
	Response  string         `json:"response"`
	Duration  float64        `json:"duration_seconds"`
}

// ThinkingStep records one unit of agent reasoning preceding a tool
// choice. Append-only.
type ThinkingStep struct {
	Reasoning     string    `json:"reasoning"`
	ChosenTool    string    `json:"chosen_tool,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
