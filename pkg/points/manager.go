package points

import (
	"strconv"
	"sync"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// kindState holds one AgentKind's point set behind its own mutex, so
// mutations against one kind never contend with another.
type kindState struct {
	mu     sync.Mutex
	points map[string]*PromptPoint // id -> point
	seq    int
}

// Manager owns the canonical, validated PromptPoint set for every
// AgentKind. An optional adapters.LLM is used only
// for conflict adjudication and used-point classification — both
// behind Judge/Classifier options — and is never required for the
// Manager to function.
type Manager struct {
	statesMu sync.RWMutex
	states   map[domain.AgentKind]*kindState

	conflictCache *conflictCache

	judge           adapters.LLM
	judgeEnabled    bool
	usagePrimaryLLM bool
	usageClassifier adapters.LLM
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithConflictJudge enables LLM-backed conflict adjudication (the third,
// optional layer of detection) using the given adapters.LLM.
func WithConflictJudge(llm adapters.LLM) Option {
	return func(m *Manager) {
		m.judge = llm
		m.judgeEnabled = llm != nil
	}
}

// WithUsageClassifier enables LLM-backed used-point classification for
// points the heuristic layer leaves unmatched.
func WithUsageClassifier(llm adapters.LLM) Option {
	return func(m *Manager) {
		m.usageClassifier = llm
	}
}

// WithLLMPrimaryUsage switches used-point identification to
// LLM-primary mode: only exact tool-name match is heuristic;
// everything else goes through the classifier.
func WithLLMPrimaryUsage() Option {
	return func(m *Manager) { m.usagePrimaryLLM = true }
}

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		states:        make(map[domain.AgentKind]*kindState),
		conflictCache: newConflictCache(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) state(kind domain.AgentKind) *kindState {
	m.statesMu.RLock()
	s, ok := m.states[kind]
	m.statesMu.RUnlock()
	if ok {
		return s
	}

	m.statesMu.Lock()
	defer m.statesMu.Unlock()
	if s, ok = m.states[kind]; ok {
		return s
	}
	s = &kindState{points: make(map[string]*PromptPoint)}
	m.states[kind] = s
	return s
}

// Points returns a snapshot of every point currently tracked for kind,
// active or not.
func (m *Manager) Points(kind domain.AgentKind) []*PromptPoint {
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*PromptPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, p.clone())
	}
	return out
}

// ActivePoints returns a snapshot of only the active points for kind.
func (m *Manager) ActivePoints(kind domain.AgentKind) []*PromptPoint {
	all := m.Points(kind)
	out := all[:0]
	for _, p := range all {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Reset removes every learned point for kind; callers reset all kinds by
// calling it for each AgentKind.
func (m *Manager) Reset(kind domain.AgentKind) {
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[string]*PromptPoint)
}

func (s *kindState) nextID(kind domain.AgentKind) string {
	s.seq++
	return string(kind) + "-point-" + strconv.Itoa(s.seq)
}
