package points

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const (
	autoVerifyMinVerifications = 3
	autoVerifyMinSuccesses     = 2
	autoRemoveMinFailures      = 2
)

var toolRelatedKeywords = []string{"tool", "command", "kubectl", "invoke", "call"}

// isToolRelated reports whether a point's success should be judged at
// tool level: category tool_usage, content mentioning a resolvable tool,
// or content containing tool-related keywords.
func isToolRelated(p *PromptPoint) bool {
	if p.Category == CategoryToolUsage {
		return true
	}
	if _, ok := resolveToolName(p.Content); ok {
		return true
	}
	return containsAny(p.Content, toolRelatedKeywords)
}

// ValidateUsedPoints updates verification counters for every used point
// id in a single atomic step per point, then applies auto-verify and
// auto-remove rules. stageSuccess is the Orchestrator-supplied
// stage-success flag for non-tool-related points.
func (m *Manager) ValidateUsedPoints(kind domain.AgentKind, t *trace.AgentTrace, usedIDs map[string]bool, stageSuccess bool, now func() time.Time) {
	if len(usedIDs) == 0 {
		return
	}
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range usedIDs {
		p, ok := s.points[id]
		if !ok || !p.Active {
			continue
		}

		success := stageSuccess
		if isToolRelated(p) {
			success = pointToolSuccess(p, t)
		}

		p.VerificationCount++
		if success {
			p.SuccessCount++
		} else {
			p.FailureCount++
		}
		p.UpdatedAt = now()
		recordValidationOutcome(kind, success)

		applyVerificationRules(p)
	}
}

// pointToolSuccess determines tool-level success for a tool-related
// point: at least one invocation of the resolved tool in this trace must
// have succeeded; if the tool was never called, the point fails.
func pointToolSuccess(p *PromptPoint, t *trace.AgentTrace) bool {
	tool, ok := resolveToolName(p.Content)
	if !ok {
		return false
	}
	called, succeeded := t.ToolSucceeded(tool)
	if !called {
		return false
	}
	return succeeded
}

// applyVerificationRules implements the auto-verify and auto-remove
// rules: verified when verification_count >= 3 and success_count >= 2;
// removed (active=false) when failure_count >= 2 and success_count == 0,
// or when failure_count >= 2 and the point is not yet verified
// (aggressive prune).
func applyVerificationRules(p *PromptPoint) {
	if p.VerificationCount >= autoVerifyMinVerifications && p.SuccessCount >= autoVerifyMinSuccesses {
		p.Verified = true
	}
	if p.FailureCount >= autoRemoveMinFailures && p.SuccessCount == 0 {
		p.Active = false
		return
	}
	if p.FailureCount >= autoRemoveMinFailures && !p.Verified {
		p.Active = false
	}
}

