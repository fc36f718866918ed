package points

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

func TestIdentifyUsedPoints_ExactToolNameMatch(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightRecommendation, Content: "always use get_metrics first"}, now)

	tr := traceWithToolCall("get_metrics", true)

	used, err := m.IdentifyUsedPoints(context.Background(), domain.Diagnosis, tr)
	require.NoError(t, err)
	assert.True(t, used[p.ID])
}

func TestIdentifyUsedPoints_WorkflowPointByConceptOverlap(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightThinking, Content: "always check deployment replicas before escalating"}, now)

	st := traceWithReasoning("checking deployment replicas count before escalating to oncall")

	used, err := m.IdentifyUsedPoints(context.Background(), domain.Diagnosis, st)
	require.NoError(t, err)
	assert.True(t, used[p.ID])
}

func TestIdentifyUsedPoints_UnmatchedPointGoesToLLMClassifier(t *testing.T) {
	classifier := fake.NewLLM(`{"used_ids": ["target"]}`)
	m := New(WithUsageClassifier(classifier))
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "xyz totally unrelated zzz"}, now)
	m.renameForTest(domain.Diagnosis, p.ID, "target")

	tr := traceWithToolCall("get_metrics", true)

	used, err := m.IdentifyUsedPoints(context.Background(), domain.Diagnosis, tr)
	require.NoError(t, err)
	assert.True(t, used["target"])
	assert.Equal(t, 1, classifier.CallCount())
}

func TestIdentifyUsedPoints_LLMPrimaryModeSkipsHeuristics(t *testing.T) {
	classifier := fake.NewLLM(`{"used_ids": []}`)
	m := New(WithUsageClassifier(classifier), WithLLMPrimaryUsage())
	now := fixedNow(time.Now())
	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "always check deployment replicas before escalating"}, now)

	st := traceWithReasoning("checking deployment replicas count before escalating to oncall")

	used, err := m.IdentifyUsedPoints(context.Background(), domain.Diagnosis, st)
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, 1, classifier.CallCount())
}

func traceWithReasoning(reasoning string) *trace.AgentTrace {
	st := trace.NewStore(t_emptyDir())
	tr, err := st.StartTrace(trace.NewTraceID(), domain.Diagnosis, domain.ProblemContext{ProblemID: "p1"})
	if err != nil {
		panic(err)
	}
	if err := st.AddThinkingStep(tr.TraceID, domain.ThinkingStep{Reasoning: reasoning}); err != nil {
		panic(err)
	}
	closed, err := st.EndTrace(tr.TraceID, true, nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return closed
}

// renameForTest swaps a point's map key and ID so LLM-classifier
// assertions can target a stable, readable id.
func (m *Manager) renameForTest(kind domain.AgentKind, oldID, newID string) {
	s := m.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.points[oldID]
	delete(s.points, oldID)
	p.ID = newID
	s.points[newID] = p
}
