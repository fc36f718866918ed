package points

import (
	"errors"
	"os"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

// Save persists kind's point set (learned points only; originals are a
// separate, immutable artifact and are never written here) to
// pointsDir/<kind>_points.json.
func (m *Manager) Save(kind domain.AgentKind, pointsDir string) error {
	path := storelayout.PointsFilePath(pointsDir, string(kind))
	return storelayout.WriteJSONAtomic(path, m.learnedSnapshot(kind))
}

func (m *Manager) learnedSnapshot(kind domain.AgentKind) []*PromptPoint {
	all := m.Points(kind)
	out := make([]*PromptPoint, 0, len(all))
	for _, p := range all {
		if p.Source == SourceLearned || p.Source == SourceMerged {
			out = append(out, p)
		}
	}
	return out
}

// Load reads pointsDir/<kind>_points.json and replaces kind's working set
// with its contents. Only source="learned" (or "merged") records are
// accepted; any source="original" entries on disk are ignored. A missing
// file is not an error — it simply leaves the kind with no points.
func (m *Manager) Load(kind domain.AgentKind, pointsDir string) error {
	path := storelayout.PointsFilePath(pointsDir, string(kind))
	var loaded []*PromptPoint
	if err := storelayout.ReadJSON(path, &loaded); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = make(map[string]*PromptPoint, len(loaded))
	maxSeq := 0
	for _, p := range loaded {
		if p.Source != SourceLearned && p.Source != SourceMerged {
			continue
		}
		s.points[p.ID] = p
		if n := seqSuffix(p.ID); n > maxSeq {
			maxSeq = n
		}
	}
	s.seq = maxSeq
	return nil
}

// seqSuffix extracts the trailing "-point-<N>" sequence number from an
// id produced by nextID, so Load can resume id generation without
// collisions. Ids not matching that shape contribute 0.
func seqSuffix(id string) int {
	idx := -1
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '-' {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(id)-1 {
		return 0
	}
	n := 0
	for _, c := range id[idx+1:] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
