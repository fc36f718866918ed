package analyzer

import "github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"

const defaultPerformanceThreshold = 10

// Analyzer derives patterns from traces. It is a pure, stateless value
// beyond its configurable performance threshold — no I/O, no locks,
// deterministic given its input.
type Analyzer struct {
	// PerformanceThreshold is the mean successful-trace tool-call count
	// above which a PerformanceOpt suggestion is emitted for an AgentKind.
	PerformanceThreshold int
}

// New creates an Analyzer with the default performance threshold (10).
func New() *Analyzer {
	return &Analyzer{PerformanceThreshold: defaultPerformanceThreshold}
}

// Analyze runs all five pattern-detection algorithms over traces and
// returns their combined pattern list. An empty trace set yields an empty
// pattern list.
func (a *Analyzer) Analyze(traces []*trace.AgentTrace) []Pattern {
	threshold := a.PerformanceThreshold
	if threshold <= 0 {
		threshold = defaultPerformanceThreshold
	}

	var patterns []Pattern
	patterns = append(patterns, successSequences(traces)...)
	patterns = append(patterns, failurePoints(traces)...)
	patterns = append(patterns, toolEffectiveness(traces)...)
	patterns = append(patterns, thinkingQuality(traces)...)
	patterns = append(patterns, performanceOpts(traces, threshold)...)
	return patterns
}
