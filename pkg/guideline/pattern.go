package guideline

import (
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
)

// insightFromPattern emits at most one candidate insight per FailurePattern,
// ToolEffectiveness (both the HighlyEffective and Problematic branches), and
// ThinkingPattern. SuccessPattern alone never produces an insight — it is
// absorbed by ToolEffectiveness — and PerformanceOpt is the Optimizer's
// concern (config tuning), not the Generator's.
func insightFromPattern(p analyzer.Pattern) (points.Insight, bool) {
	switch p.Type {
	case analyzer.FailurePattern:
		return points.Insight{
			Type:      points.InsightWarning,
			Content:   patternContent(p),
			Reasoning: "analyzer-observed failure pattern",
		}, true

	case analyzer.ToolEffectiveness:
		rating, _ := p.Metadata["rating"].(analyzer.EffectivenessRating)
		switch rating {
		case analyzer.HighlyEffective:
			return points.Insight{
				Type:      points.InsightRecommendation,
				Content:   patternContent(p),
				Reasoning: "analyzer-observed tool effectiveness",
			}, true
		case analyzer.Problematic:
			return points.Insight{
				Type:      points.InsightWarning,
				Content:   patternContent(p),
				Reasoning: "analyzer-observed tool effectiveness",
			}, true
		default:
			return points.Insight{}, false
		}

	case analyzer.ThinkingPattern:
		return points.Insight{
			Type:      points.InsightThinking,
			Content:   patternContent(p),
			Reasoning: "analyzer-observed reasoning quality",
		}, true

	default:
		return points.Insight{}, false
	}
}

func patternContent(p analyzer.Pattern) string {
	if len(p.Recommendations) > 0 {
		return p.Description + ". " + p.Recommendations[0]
	}
	return p.Description
}
