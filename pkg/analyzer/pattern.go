// Package analyzer implements the Pattern Analyzer (C2): deterministic,
// side-effect-free functions over a set of traces producing structured
// Pattern observations that the Guideline Generator (pkg/guideline) turns
// into candidate insights.
package analyzer

// PatternType tags the five kinds of observation the Analyzer emits.
type PatternType string

const (
	SuccessPattern     PatternType = "SuccessPattern"
	FailurePattern     PatternType = "FailurePattern"
	ToolEffectiveness  PatternType = "ToolEffectiveness"
	ThinkingPattern     PatternType = "ThinkingPattern"
	PerformanceOpt     PatternType = "PerformanceOpt"
)

// EffectivenessRating is ToolEffectiveness's own two-valued axis, carried
// in Pattern.Metadata["rating"].
type EffectivenessRating string

const (
	HighlyEffective EffectivenessRating = "HighlyEffective"
	Problematic     EffectivenessRating = "Problematic"
)

// Pattern is one structured observation derived from a set of traces.
type Pattern struct {
	Type            PatternType    `json:"type"`
	Description     string         `json:"description"`
	Confidence      float64        `json:"confidence"`
	Frequency       int            `json:"frequency"`
	Examples        []string       `json:"examples,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

func clampExamples(examples []string) []string {
	if len(examples) > 3 {
		return examples[:3]
	}
	return examples
}

func clampRecommendations(recs []string) []string {
	if len(recs) > 3 {
		return recs[:3]
	}
	return recs
}
