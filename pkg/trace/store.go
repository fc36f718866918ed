package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/apierrors"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// Store is the Trace Store (C1). Live traces are held in memory guarded by
// a mutex; closed traces are persisted to the current round's traces/
// directory and dropped from the live map.
type Store struct {
	mu   sync.RWMutex
	live map[string]*AgentTrace

	// root is the directory closed traces are written into. The
	// Orchestrator repoints it at the start of every round via SetRoot.
	root string

	// history lists prior rounds' traces directories, consulted by
	// LoadTraces when the filter requests historical (cross-round) data.
	history []string
}

// NewStore creates a Trace Store writing into root.
func NewStore(root string) *Store {
	return &Store{
		live: make(map[string]*AgentTrace),
		root: root,
	}
}

// SetRoot repoints the Store at a new round's traces/ directory, moving
// the previous root onto the history list so LoadTraces can still reach
// it when asked for historical traces.
func (s *Store) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root != "" {
		s.history = append(s.history, s.root)
	}
	s.root = root
}

// NewTraceID returns a fresh globally-unique trace id.
func NewTraceID() string {
	return uuid.New().String()
}

// StartTrace creates a new live trace. Fails with DuplicateTrace if id is
// already live.
func (s *Store) StartTrace(id string, kind domain.AgentKind, ctx domain.ProblemContext) (*AgentTrace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.live[id]; exists {
		return nil, apierrors.NewDuplicateTraceError(id)
	}

	t := &AgentTrace{
		TraceID:       id,
		Kind:          kind,
		Problem:       ctx,
		StartedAt:     time.Now(),
		ToolCalls:     []domain.ToolCall{},
		ThinkingSteps: []domain.ThinkingStep{},
	}
	s.live[id] = t
	return t, nil
}

// AddToolCall appends call to trace id's ordered tool-call sequence.
// Append-only; fails with UnknownTrace if id is not live.
func (s *Store) AddToolCall(id string, call domain.ToolCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.live[id]
	if !ok {
		return apierrors.NewUnknownTraceError(id)
	}
	t.ToolCalls = append(t.ToolCalls, call)
	return nil
}

// AddThinkingStep appends step to trace id's ordered thinking-step
// sequence. Append-only; fails with UnknownTrace if id is not live.
func (s *Store) AddThinkingStep(id string, step domain.ThinkingStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.live[id]
	if !ok {
		return apierrors.NewUnknownTraceError(id)
	}
	t.ThinkingSteps = append(t.ThinkingSteps, step)
	return nil
}

// Live reports whether id is currently a live (unclosed) trace.
func (s *Store) Live(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.live[id]
	return ok
}
