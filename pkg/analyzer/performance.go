package analyzer

import (
	"fmt"
	"sort"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

// performanceOpts emits, per AgentKind, a PerformanceOpt suggestion when
// the mean tool-call count across successful traces of that kind exceeds
// threshold.
func performanceOpts(traces []*trace.AgentTrace, threshold int) []Pattern {
	byKind := make(map[domain.AgentKind][]*trace.AgentTrace)
	for _, t := range traces {
		if t.Success {
			byKind[t.Kind] = append(byKind[t.Kind], t)
		}
	}

	var kinds []domain.AgentKind
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var patterns []Pattern
	for _, kind := range kinds {
		group := byKind[kind]
		total := 0
		var examples []string
		for _, t := range group {
			total += len(t.ToolCalls)
			if len(examples) < 3 {
				examples = append(examples, t.TraceID)
			}
		}
		mean := float64(total) / float64(len(group))
		if mean <= float64(threshold) {
			continue
		}
		patterns = append(patterns, Pattern{
			Type:        PerformanceOpt,
			Description: fmt.Sprintf("%s agent averages %.1f tool calls per successful run, above the %d-call threshold", kind, mean, threshold),
			Confidence:  min(mean/float64(threshold*2), 1.0),
			Frequency:   len(group),
			Examples:    clampExamples(examples),
			Recommendations: []string{
				"look for redundant or exploratory tool calls that could be eliminated",
			},
			Metadata: map[string]any{"agent_kind": kind, "mean_tool_calls": mean},
		})
	}
	return patterns
}
