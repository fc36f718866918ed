package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const (
	minSequenceLen = 2
	maxSequenceLen = 5
	minSequenceFreq = 2
)

// successSequences enumerates consecutive tool-name subsequences of
// length 2-5 across successful traces, keeping those seen at least twice.
func successSequences(traces []*trace.AgentTrace) []Pattern {
	successful := filterSuccessful(traces)
	if len(successful) == 0 {
		return nil
	}

	counts := make(map[string]int)
	examples := make(map[string][]string)

	for _, t := range successful {
		names := t.ToolNames()
		for length := minSequenceLen; length <= maxSequenceLen && length <= len(names); length++ {
			for start := 0; start+length <= len(names); start++ {
				seq := strings.Join(names[start:start+length], " -> ")
				counts[seq]++
				if len(examples[seq]) < 3 {
					examples[seq] = append(examples[seq], t.TraceID)
				}
			}
		}
	}

	var keys []string
	for seq, count := range counts {
		if count >= minSequenceFreq {
			keys = append(keys, seq)
		}
	}
	sort.Strings(keys)

	patterns := make([]Pattern, 0, len(keys))
	for _, seq := range keys {
		count := counts[seq]
		patterns = append(patterns, Pattern{
			Type:        SuccessPattern,
			Description: fmt.Sprintf("tool sequence %q recurs in successful traces", seq),
			Confidence:  float64(count) / float64(len(successful)),
			Frequency:   count,
			Examples:    clampExamples(examples[seq]),
			Metadata:    map[string]any{"sequence": seq},
		})
	}
	return patterns
}

func filterSuccessful(traces []*trace.AgentTrace) []*trace.AgentTrace {
	var out []*trace.AgentTrace
	for _, t := range traces {
		if t.Success {
			out = append(out, t)
		}
	}
	return out
}

func filterFailed(traces []*trace.AgentTrace) []*trace.AgentTrace {
	var out []*trace.AgentTrace
	for _, t := range traces {
		if !t.Success {
			out = append(out, t)
		}
	}
	return out
}
