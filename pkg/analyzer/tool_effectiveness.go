package analyzer

import (
	"fmt"
	"sort"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const (
	minCallsForEffectiveness = 3
	highlyEffectiveRate      = 0.8
	problematicRate          = 0.5
)

type toolStats struct {
	calls       int
	successes   int
	totalDuration float64
	examples    []string
}

// toolEffectiveness computes per-tool success rate and mean duration over
// tools called at least three times, emitting a HighlyEffective pattern
// when the rate exceeds 0.8 and a Problematic pattern when it is below
// 0.5.
func toolEffectiveness(traces []*trace.AgentTrace) []Pattern {
	stats := make(map[string]*toolStats)
	for _, t := range traces {
		for _, c := range t.ToolCalls {
			st, ok := stats[c.ToolName]
			if !ok {
				st = &toolStats{}
				stats[c.ToolName] = st
			}
			st.calls++
			if c.Success {
				st.successes++
			}
			st.totalDuration += c.Duration
			if len(st.examples) < 3 {
				st.examples = append(st.examples, t.TraceID)
			}
		}
	}

	var names []string
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	var patterns []Pattern
	for _, name := range names {
		st := stats[name]
		if st.calls < minCallsForEffectiveness {
			continue
		}
		rate := float64(st.successes) / float64(st.calls)
		meanDuration := st.totalDuration / float64(st.calls)

		switch {
		case rate > highlyEffectiveRate:
			patterns = append(patterns, Pattern{
				Type:        ToolEffectiveness,
				Description: fmt.Sprintf("tool %q is highly effective (%.0f%% success rate)", name, rate*100),
				Confidence:  rate,
				Frequency:   st.calls,
				Examples:    clampExamples(st.examples),
				Recommendations: []string{
					fmt.Sprintf("encourage continued use of %s", name),
				},
				Metadata: map[string]any{
					"tool": name, "rating": HighlyEffective, "mean_duration_seconds": meanDuration,
				},
			})
		case rate < problematicRate:
			patterns = append(patterns, Pattern{
				Type:        ToolEffectiveness,
				Description: fmt.Sprintf("tool %q is problematic (%.0f%% success rate)", name, rate*100),
				Confidence:  1 - rate,
				Frequency:   st.calls,
				Examples:    clampExamples(st.examples),
				Recommendations: []string{
					fmt.Sprintf("caution against relying on %s without verification", name),
				},
				Metadata: map[string]any{
					"tool": name, "rating": Problematic, "mean_duration_seconds": meanDuration,
				},
			})
		}
	}
	return patterns
}
