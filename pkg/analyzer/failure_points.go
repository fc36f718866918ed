package analyzer

import (
	"fmt"
	"sort"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const topFailureTools = 3

// failurePoints counts tools whose calls returned success=false and
// reports the top three as FailurePatterns, with confidence relative to
// the number of failed traces.
func failurePoints(traces []*trace.AgentTrace) []Pattern {
	failed := filterFailed(traces)
	if len(failed) == 0 {
		return nil
	}

	counts := make(map[string]int)
	examples := make(map[string][]string)
	for _, t := range traces {
		for _, c := range t.ToolCalls {
			if !c.Success {
				counts[c.ToolName]++
				if len(examples[c.ToolName]) < 3 {
					examples[c.ToolName] = append(examples[c.ToolName], t.TraceID)
				}
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	type toolCount struct {
		name  string
		count int
	}
	var ranked []toolCount
	for name, count := range counts {
		ranked = append(ranked, toolCount{name, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > topFailureTools {
		ranked = ranked[:topFailureTools]
	}

	patterns := make([]Pattern, 0, len(ranked))
	for _, tc := range ranked {
		patterns = append(patterns, Pattern{
			Type:        FailurePattern,
			Description: fmt.Sprintf("tool %q frequently fails", tc.name),
			Confidence:  float64(tc.count) / float64(len(failed)),
			Frequency:   tc.count,
			Examples:    clampExamples(examples[tc.name]),
			Recommendations: []string{
				fmt.Sprintf("review preconditions before calling %s", tc.name),
			},
			Metadata: map[string]any{"tool": tc.name},
		})
	}
	return patterns
}
