// Package domain holds the value types shared across the meta-learning
// core: AgentKind, ProblemContext, ToolCall, ThinkingStep, and the oracle
// result shape traces are closed with. None of these types own behavior
// beyond simple constructors and string conversions — the components in
// pkg/trace, pkg/analyzer, pkg/points, pkg/guideline, pkg/optimizer, and
// pkg/orchestrator operate on them.
package domain

import "fmt"

// AgentKind identifies one of the four task-agent roles the meta-agent
// observes and edits prompts for.
type AgentKind string

const (
	Diagnosis    AgentKind = "Diagnosis"
	Localization AgentKind = "Localization"
	Mitigation   AgentKind = "Mitigation"
	Rollback     AgentKind = "Rollback"
)

// AllAgentKinds returns the four agent kinds in a stable, fixed order.
func AllAgentKinds() []AgentKind {
	return []AgentKind{Diagnosis, Localization, Mitigation, Rollback}
}

// String implements fmt.Stringer.
func (k AgentKind) String() string { return string(k) }

// Valid reports whether k is one of the four recognized agent kinds.
func (k AgentKind) Valid() bool {
	switch k {
	case Diagnosis, Localization, Mitigation, Rollback:
		return true
	default:
		return false
	}
}

// ParseAgentKind validates and returns s as an AgentKind.
func ParseAgentKind(s string) (AgentKind, error) {
	k := AgentKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unrecognized agent kind %q", s)
	}
	return k, nil
}
