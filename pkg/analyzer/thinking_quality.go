package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const thinkingQualityWordThreshold = 20

// thinkingQuality groups reasoning text preceding each tool choice within
// successful traces, emitting a ThinkingPattern when the mean word count
// exceeds 20.
func thinkingQuality(traces []*trace.AgentTrace) []Pattern {
	successful := filterSuccessful(traces)
	if len(successful) == 0 {
		return nil
	}

	wordSums := make(map[string]int)
	counts := make(map[string]int)
	examples := make(map[string][]string)

	for _, t := range successful {
		for _, step := range t.ThinkingSteps {
			if step.ChosenTool == "" {
				continue
			}
			words := len(strings.Fields(step.Reasoning))
			wordSums[step.ChosenTool] += words
			counts[step.ChosenTool]++
			if len(examples[step.ChosenTool]) < 3 {
				examples[step.ChosenTool] = append(examples[step.ChosenTool], t.TraceID)
			}
		}
	}

	var tools []string
	for tool := range counts {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	var patterns []Pattern
	for _, tool := range tools {
		mean := float64(wordSums[tool]) / float64(counts[tool])
		if mean <= thinkingQualityWordThreshold {
			continue
		}
		patterns = append(patterns, Pattern{
			Type:        ThinkingPattern,
			Description: fmt.Sprintf("thorough reasoning (avg %.0f words) precedes successful %q calls", mean, tool),
			Confidence:  min(mean/float64(thinkingQualityWordThreshold*2), 1.0),
			Frequency:   counts[tool],
			Examples:    clampExamples(examples[tool]),
			Recommendations: []string{
				fmt.Sprintf("encourage explaining reasoning before calling %s", tool),
			},
			Metadata: map[string]any{"chosen_tool": tool, "mean_reasoning_words": mean},
		})
	}
	return patterns
}
