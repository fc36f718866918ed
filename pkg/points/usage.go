package points

import (
	"context"
	"strings"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const usageClassifierBatchSize = 8
const minTokenOverlap = 2
const conceptOverlapThreshold = 0.30

// IdentifyUsedPoints reports which active points for kind were "used" by
// the given closed trace, per the heuristic-first or LLM-primary modes.
func (m *Manager) IdentifyUsedPoints(ctx context.Context, kind domain.AgentKind, t *trace.AgentTrace) (map[string]bool, error) {
	active := m.ActivePoints(kind)
	used := make(map[string]bool)
	var remaining []*PromptPoint

	toolNames := t.ToolNames()
	haystack := strings.ToLower(strings.Join(toolNames, " ") + " " + t.ReasoningText())

	for _, p := range active {
		if p.Category == CategoryToolUsage {
			if tool, ok := resolveToolName(p.Content); ok && containsTool(toolNames, tool) {
				used[p.ID] = true
				continue
			}
		}
		remaining = append(remaining, p)
	}

	if m.usagePrimaryLLM {
		return m.classifyRemaining(ctx, remaining, used, haystack)
	}

	var stillUnmatched []*PromptPoint
	for _, p := range remaining {
		if p.Category == CategoryWorkflow || p.Category == CategoryGeneral {
			if conceptOverlap(p.Content, haystack) >= conceptOverlapThreshold {
				used[p.ID] = true
				continue
			}
		}
		if hasTokenOverlap(p.Content, haystack, toolNames) {
			used[p.ID] = true
			continue
		}
		stillUnmatched = append(stillUnmatched, p)
	}

	return m.classifyRemaining(ctx, stillUnmatched, used, haystack)
}

func containsTool(toolNames []string, tool string) bool {
	for _, n := range toolNames {
		if n == tool {
			return true
		}
	}
	return false
}

// hasTokenOverlap gates token overlap (≥2 common tokens between point
// tokens and the trace haystack) on an activity check: at least one
// shared action verb or tool mention.
func hasTokenOverlap(content, haystack string, toolNames []string) bool {
	pointTokens := tokenize(content)
	haystackTokens := tokenize(haystack)

	common := 0
	for tok := range pointTokens {
		if haystackTokens[tok] {
			common++
		}
	}
	if common < minTokenOverlap {
		return false
	}

	if len(toolNames) == 0 {
		return false
	}
	for _, t := range toolNames {
		if strings.Contains(strings.ToLower(content), strings.ToLower(t)) {
			return true
		}
	}
	return containsAny(content, affirmationWords) || containsAny(content, negationWords)
}

// conceptOverlap reports the fraction of content's ≥4-letter tokens that
// appear in haystack.
func conceptOverlap(content, haystack string) float64 {
	haystackTokens := tokenize(haystack)
	var total, matched int
	for tok := range tokenize(content) {
		if len(tok) < 4 {
			continue
		}
		total++
		if haystackTokens[tok] {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// classifyRemaining batches any still-unmatched points (≤8 per call) to
// the optional LLM usage classifier. With no classifier configured, or
// an empty remaining set, it returns the accumulated used set unchanged.
func (m *Manager) classifyRemaining(ctx context.Context, remaining []*PromptPoint, used map[string]bool, haystack string) (map[string]bool, error) {
	if len(remaining) == 0 || m.usageClassifier == nil {
		return used, nil
	}

	for start := 0; start < len(remaining); start += usageClassifierBatchSize {
		end := start + usageClassifierBatchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batch := remaining[start:end]

		ids, err := m.classifyBatch(ctx, batch, haystack)
		if err != nil {
			return used, err
		}
		for _, id := range ids {
			used[id] = true
		}
	}
	return used, nil
}

func (m *Manager) classifyBatch(ctx context.Context, batch []*PromptPoint, haystack string) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("Given this agent trace summary:\n")
	sb.WriteString(haystack)
	sb.WriteString("\n\nWhich of these candidate instructions were plausibly followed? Reply with strict JSON ")
	sb.WriteString(`{"used_ids": [string]}` + ".\n")
	for _, p := range batch {
		sb.WriteString(p.ID + ": " + p.Content + "\n")
	}

	text, err := m.usageClassifier.Infer(ctx, []adapters.Message{{Role: "user", Content: sb.String()}}, nil)
	if err != nil {
		return nil, err
	}
	return parseUsedIDs(text), nil
}
