// Package points implements the Point-Based Prompt Manager (C3): the
// canonical, validated instruction set per AgentKind. This is the core of
// the core — conflict detection, conflict resolution,
// used-point identification, validation/verification counters, and
// prompt rebuild all live here, one sync.Mutex per AgentKind guarding
// that kind's point set.
package points

import "time"

// Source is where a PromptPoint's content came from.
type Source string

const (
	SourceOriginal Source = "original"
	SourceLearned  Source = "learned"
	SourceMerged   Source = "merged"
)

// Category groups PromptPoints for prompt rendering.
type Category string

const (
	CategoryToolUsage Category = "tool_usage"
	CategoryWorkflow  Category = "workflow"
	CategoryWarning   Category = "warning"
	CategoryExample   Category = "example"
	CategoryReference Category = "reference"
	CategoryGeneral   Category = "general"
)

// categoryOrder is the fixed group order rendered prompts use;
// any category not listed here sorts alphabetically after these four.
var categoryOrder = []Category{CategoryToolUsage, CategoryWorkflow, CategoryWarning, CategoryGeneral}

const defaultPriority = 6

// PromptPoint is a single atomic instruction tracked by the Point
// Manager.
type PromptPoint struct {
	ID                string         `json:"id"`
	Content           string         `json:"content"`
	Source            Source         `json:"source"`
	Category          Category       `json:"category"`
	Priority          int            `json:"priority"`
	Verified          bool           `json:"verified"`
	VerificationCount int            `json:"verification_count"`
	SuccessCount      int            `json:"success_count"`
	FailureCount      int            `json:"failure_count"`
	ConflictsWith     []string       `json:"conflicts_with,omitempty"`
	Replaces          *string        `json:"replaces,omitempty"`
	ReplacedBy        *string        `json:"replaced_by,omitempty"`
	Active            bool           `json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// SuccessRate is success_count / max(verification_count, 1), the key used
// throughout conflict resolution.
func (p *PromptPoint) SuccessRate() float64 {
	denominator := p.VerificationCount
	if denominator < 1 {
		denominator = 1
	}
	return float64(p.SuccessCount) / float64(denominator)
}

// clone returns a deep-enough copy for safe return to callers outside the
// per-kind lock (slices/maps are copied; nested values are not mutated by
// any Manager operation after construction).
func (p *PromptPoint) clone() *PromptPoint {
	c := *p
	if p.ConflictsWith != nil {
		c.ConflictsWith = append([]string(nil), p.ConflictsWith...)
	}
	if p.Replaces != nil {
		v := *p.Replaces
		c.Replaces = &v
	}
	if p.ReplacedBy != nil {
		v := *p.ReplacedBy
		c.ReplacedBy = &v
	}
	if p.Metadata != nil {
		m := make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			m[k] = v
		}
		c.Metadata = m
	}
	return &c
}
