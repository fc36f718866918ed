package trace

import (
	"sort"
	"strings"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Filter constrains LoadTraces/Statistics queries.
type Filter struct {
	Kind              *domain.AgentKind
	ProblemID         string
	Since             *time.Time
	Until             *time.Time
	IncludeHistorical bool
}

func (f Filter) matches(t *AgentTrace) bool {
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.ProblemID != "" && t.Problem.ProblemID != f.ProblemID {
		return false
	}
	if f.Since != nil && t.StartedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && t.StartedAt.After(*f.Until) {
		return false
	}
	return true
}

// LoadTraces returns every closed trace matching filter. I/O errors on
// read are surfaced to the caller.
func (s *Store) LoadTraces(filter Filter) ([]*AgentTrace, error) {
	s.mu.RLock()
	root := s.root
	var dirs []string
	if root != "" {
		dirs = append(dirs, root)
	}
	if filter.IncludeHistorical {
		dirs = append(dirs, s.history...)
	}
	s.mu.RUnlock()

	var out []*AgentTrace
	for _, dir := range dirs {
		loaded, err := loadTracesFromDir(dir)
		if err != nil {
			return nil, err
		}
		for _, t := range loaded {
			if filter.matches(t) {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// ToolUsage is one entry of Stats.MostUsedTools.
type ToolUsage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes a set of traces.
type Stats struct {
	Count                 int         `json:"count"`
	SuccessRate           float64     `json:"success_rate"`
	AverageDuration       float64     `json:"average_duration_seconds"`
	MostUsedTools         []ToolUsage `json:"most_used_tools"`
	CommonFailurePrefixes []string    `json:"common_failure_prefixes"`
}

// Statistics computes aggregate Stats over the traces matching filter.
func (s *Store) Statistics(filter Filter) (*Stats, error) {
	traces, err := s.LoadTraces(filter)
	if err != nil {
		return nil, err
	}
	return computeStatistics(traces), nil
}

func computeStatistics(traces []*AgentTrace) *Stats {
	stats := &Stats{Count: len(traces)}
	if len(traces) == 0 {
		return stats
	}

	successes := 0
	var totalDuration float64
	toolCounts := make(map[string]int)
	failurePrefixCounts := make(map[string]int)

	for _, t := range traces {
		if t.Success {
			successes++
		}
		totalDuration += t.Metrics.DurationSeconds
		for _, c := range t.ToolCalls {
			toolCounts[c.ToolName]++
		}
		if !t.Success {
			names := t.ToolNames()
			n := len(names)
			if n > 2 {
				n = 2
			}
			if n > 0 {
				failurePrefixCounts[strings.Join(names[:n], " -> ")]++
			}
		}
	}

	stats.SuccessRate = float64(successes) / float64(len(traces))
	stats.AverageDuration = totalDuration / float64(len(traces))

	for name, count := range toolCounts {
		stats.MostUsedTools = append(stats.MostUsedTools, ToolUsage{Name: name, Count: count})
	}
	sort.Slice(stats.MostUsedTools, func(i, j int) bool {
		if stats.MostUsedTools[i].Count != stats.MostUsedTools[j].Count {
			return stats.MostUsedTools[i].Count > stats.MostUsedTools[j].Count
		}
		return stats.MostUsedTools[i].Name < stats.MostUsedTools[j].Name
	})

	type prefixCount struct {
		prefix string
		count  int
	}
	var prefixes []prefixCount
	for p, c := range failurePrefixCounts {
		prefixes = append(prefixes, prefixCount{p, c})
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if prefixes[i].count != prefixes[j].count {
			return prefixes[i].count > prefixes[j].count
		}
		return prefixes[i].prefix < prefixes[j].prefix
	})
	for _, p := range prefixes {
		stats.CommonFailurePrefixes = append(stats.CommonFailurePrefixes, p.prefix)
	}

	return stats
}
