package points

import "strings"

// InsightType is the kind of candidate insight the Analyzer or an LLM
// proposal assigns, used to derive the resulting PromptPoint's Category.
type InsightType string

const (
	InsightWarning        InsightType = "warning"
	InsightCaution        InsightType = "caution"
	InsightRecommendation InsightType = "recommendation"
	InsightThinking       InsightType = "thinking_guidance"
	InsightGeneral        InsightType = "general"
)

// Insight is a candidate learned point proposed by the Analyzer or an
// LLM, not yet admitted into a point set.
type Insight struct {
	Type      InsightType
	Content   string
	Reasoning string
}

// categoryFor derives a PromptPoint's Category from an insight type:
// warning/caution becomes warning, recommendation becomes tool_usage,
// thinking-guidance becomes workflow, everything else becomes general.
func categoryFor(t InsightType) Category {
	switch t {
	case InsightWarning, InsightCaution:
		return CategoryWarning
	case InsightRecommendation:
		return CategoryToolUsage
	case InsightThinking:
		return CategoryWorkflow
	default:
		return CategoryGeneral
	}
}

// normalizeContent trims an insight/point content for dedupe comparison.
func normalizeContent(s string) string {
	return strings.TrimSpace(s)
}
