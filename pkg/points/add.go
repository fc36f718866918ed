package points

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// AddLearnedInsight implements addLearnedInsight: dedupe
// by exact trimmed content against active points, otherwise create a new
// learned point at default priority. Persistence is the caller's
// responsibility (the Manager itself holds no persist path — see
// pkg/points/persist.go — so the Guideline Generator, which owns the
// round directory, drives save-after-mutate).
func (m *Manager) AddLearnedInsight(kind domain.AgentKind, insight Insight, now nowFunc) *PromptPoint {
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	content := normalizeContent(insight.Content)
	for _, p := range s.points {
		if p.Active && normalizeContent(p.Content) == content {
			return p.clone()
		}
	}

	id := s.nextID(kind)
	t := now()
	p := &PromptPoint{
		ID:        id,
		Content:   content,
		Source:    SourceLearned,
		Category:  categoryFor(insight.Type),
		Priority:  defaultPriority,
		Active:    true,
		CreatedAt: t,
		UpdatedAt: t,
	}
	s.points[id] = p
	return p.clone()
}

// nowFunc supplies the current time, injected so callers control
// recency ordering deterministically in tests.
type nowFunc func() time.Time
