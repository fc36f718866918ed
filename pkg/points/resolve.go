package points

import (
	"sort"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// sourcePreferenceRank orders Source for conflict-resolution tie-breaking:
// a verified learned point outranks an unverified learned point, which
// outranks an original point. Source is applied together with the
// Verified flag, since plain "learned" here already covers both cases
// once Verified is compared first in the ordering key.
func sourcePreferenceRank(s Source) int {
	switch s {
	case SourceLearned, SourceMerged:
		return 1
	case SourceOriginal:
		return 0
	default:
		return 0
	}
}

// better reports whether a outranks b under the resolution ordering key:
// verified desc, success rate desc, source preference desc, priority
// desc, recency desc (more recent creation wins).
func better(a, b *PromptPoint) bool {
	if a.Verified != b.Verified {
		return a.Verified
	}
	if ra, rb := a.SuccessRate(), b.SuccessRate(); ra != rb {
		return ra > rb
	}
	if pa, pb := sourcePreferenceRank(a.Source), sourcePreferenceRank(b.Source); pa != pb {
		return pa > pb
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// ResolveConflicts groups the conflicting pairs into maximal cliques via
// union-find, picks one winner per clique by the ordering key, and
// deactivates the rest, recording replaces/replaced_by. It persists the
// result via the caller-supplied save callback if non-nil.
func (m *Manager) ResolveConflicts(kind domain.AgentKind, conflicts []conflictPair) {
	if len(conflicts) == 0 {
		return
	}
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := make(map[string]string)
	find := func(id string) string {
		for parent[id] != id {
			parent[id] = parent[parent[id]]
			id = parent[id]
		}
		return id
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	ensure := func(id string) {
		if _, ok := parent[id]; !ok {
			parent[id] = id
		}
	}
	for _, c := range conflicts {
		ensure(c.A)
		ensure(c.B)
		union(c.A, c.B)
	}

	cliques := make(map[string][]string)
	for id := range parent {
		root := find(id)
		cliques[root] = append(cliques[root], id)
	}

	for _, ids := range cliques {
		var members []*PromptPoint
		for _, id := range ids {
			if p, ok := s.points[id]; ok && p.Active {
				members = append(members, p)
			}
		}
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(i, j int) bool { return better(members[i], members[j]) })
		winner := members[0]
		losers := members[1:]

		var lastLoserID string
		for _, loser := range losers {
			loser.Active = false
			wid := winner.ID
			loser.ReplacedBy = &wid
			lastLoserID = loser.ID
		}
		if lastLoserID != "" {
			winner.Replaces = &lastLoserID
		}
	}
}
