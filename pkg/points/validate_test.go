package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

func traceWithToolCall(toolName string, success bool) *trace.AgentTrace {
	st := trace.NewStore(t_emptyDir())
	tr, err := st.StartTrace(trace.NewTraceID(), domain.Diagnosis, domain.ProblemContext{ProblemID: "p1"})
	if err != nil {
		panic(err)
	}
	if err := st.AddToolCall(tr.TraceID, domain.ToolCall{ToolName: toolName, Success: success}); err != nil {
		panic(err)
	}
	closed, err := st.EndTrace(tr.TraceID, success, nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return closed
}

func t_emptyDir() string { return "" }

func TestValidateUsedPoints_ToolRelatedSuccessIsToolLevel(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightRecommendation, Content: "always use get_metrics for checks"}, now)

	tr := traceWithToolCall("get_metrics", true)

	m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{p.ID: true}, false, now)

	got := indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.Equal(t, 1, got.VerificationCount)
	assert.Equal(t, 1, got.SuccessCount)
	assert.Equal(t, 0, got.FailureCount)
}

func TestValidateUsedPoints_ToolNeverCalledFails(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightRecommendation, Content: "always use get_logs for checks"}, now)

	tr := traceWithToolCall("get_metrics", true)

	m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{p.ID: true}, true, now)

	got := indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.Equal(t, 0, got.SuccessCount)
	assert.Equal(t, 1, got.FailureCount)
}

func TestValidateUsedPoints_AutoVerifyAfterThreeVerificationsTwoSuccesses(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "stay calm"}, now)

	for i := 0; i < 2; i++ {
		tr := traceWithToolCall("noop_tool", true)
		m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{p.ID: true}, true, now)
	}
	got := indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.False(t, got.Verified)

	tr := traceWithToolCall("noop_tool", true)
	m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{p.ID: true}, true, now)

	got = indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.True(t, got.Verified)
	assert.Equal(t, 3, got.VerificationCount)
	assert.Equal(t, 3, got.SuccessCount)
}

func TestValidateUsedPoints_AggressivePruneOnTwoFailuresUnverified(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "stay calm"}, now)

	for i := 0; i < 2; i++ {
		tr := traceWithToolCall("noop_tool", true)
		m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{p.ID: true}, false, now)
	}

	got := indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.False(t, got.Active)
	assert.Equal(t, 2, got.FailureCount)
	require.False(t, got.Verified)
}

func TestValidateUsedPoints_UnusedPointsUntouched(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())
	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "stay calm"}, now)

	tr := traceWithToolCall("noop_tool", true)
	m.ValidateUsedPoints(domain.Diagnosis, tr, map[string]bool{}, true, now)

	got := indexByID(m.Points(domain.Diagnosis))[p.ID]
	assert.Equal(t, 0, got.VerificationCount)
}
