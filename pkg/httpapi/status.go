// Package httpapi exposes a small, read-only HTTP status surface an
// operator can poll against an in-flight learning run: current run root,
// every round completed so far, and one round's detail by number.
package httpapi

import (
	"sync"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/orchestrator"
)

// Status is a thread-safe accumulator the orchestrator's OnRound hook
// feeds as each round finishes, and the HTTP handlers read from.
type Status struct {
	mu      sync.RWMutex
	runRoot string
	rounds  []orchestrator.RoundInfo
}

// NewStatus creates an empty Status.
func NewStatus() *Status {
	return &Status{}
}

// SetRunRoot records the run root path, known as soon as Run starts.
func (s *Status) SetRunRoot(path string) {
	s.mu.Lock()
	s.runRoot = path
	s.mu.Unlock()
}

// RecordRound appends (or replaces, on a resumed re-run of the same
// round number) a round's outcome.
func (s *Status) RecordRound(info orchestrator.RoundInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rounds {
		if r.Round == info.Round {
			s.rounds[i] = info
			return
		}
	}
	s.rounds = append(s.rounds, info)
}

// Snapshot returns the run root and every round recorded so far.
func (s *Status) Snapshot() (string, []orchestrator.RoundInfo) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rounds := make([]orchestrator.RoundInfo, len(s.rounds))
	copy(rounds, s.rounds)
	return s.runRoot, rounds
}

// Round returns round n's recorded info, or ok=false if it hasn't
// finished (or never ran) yet.
func (s *Status) Round(n int) (orchestrator.RoundInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rounds {
		if r.Round == n {
			return r, true
		}
	}
	return orchestrator.RoundInfo{}, false
}
