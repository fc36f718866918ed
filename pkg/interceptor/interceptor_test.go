package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/masking"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

func newTraceForTest(t *testing.T, st *trace.Store, kind domain.AgentKind) string {
	t.Helper()
	tr, err := st.StartTrace(trace.NewTraceID(), kind, domain.ProblemContext{ProblemID: "p1"})
	require.NoError(t, err)
	return tr.TraceID
}

func TestCall_RecordsToolCallAndThinkingStepWhenEnabled(t *testing.T) {
	st := trace.NewStore(t.TempDir())
	traceID := newTraceForTest(t, st, domain.Diagnosis)

	caller := fake.NewToolCaller(map[string]*adapters.ToolCallResult{
		"get_metrics": {Success: true, Response: "cpu high"},
	})
	ic := New(caller, st, masking.NewService(true), true)
	ic.SetActiveTrace(traceID)

	result, err := ic.Call(context.Background(), "get_metrics", map[string]any{"ns": "default"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	closed, err := st.EndTrace(traceID, true, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, closed.ToolCalls, 1)
	assert.Equal(t, "get_metrics", closed.ToolCalls[0].ToolName)
	assert.True(t, closed.ToolCalls[0].Success)
	require.Len(t, closed.ThinkingSteps, 1)
	assert.Equal(t, "get_metrics", closed.ThinkingSteps[0].ChosenTool)
}

func TestCall_DisabledIsPurePassThrough(t *testing.T) {
	st := trace.NewStore(t.TempDir())
	traceID := newTraceForTest(t, st, domain.Diagnosis)

	caller := fake.NewToolCaller(nil)
	ic := New(caller, st, masking.NewService(true), false)
	ic.SetActiveTrace(traceID)

	_, err := ic.Call(context.Background(), "get_logs", nil)
	require.NoError(t, err)

	closed, err := st.EndTrace(traceID, true, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, closed.ToolCalls)
}

func TestCall_NoActiveTraceSkipsRecordingWithoutError(t *testing.T) {
	st := trace.NewStore(t.TempDir())
	caller := fake.NewToolCaller(nil)
	ic := New(caller, st, masking.NewService(true), true)

	result, err := ic.Call(context.Background(), "get_logs", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCall_ToolErrorSurfacedUnchangedAfterRecording(t *testing.T) {
	st := trace.NewStore(t.TempDir())
	traceID := newTraceForTest(t, st, domain.Diagnosis)

	caller := &erroringToolCaller{}
	ic := New(caller, st, masking.NewService(true), true)
	ic.SetActiveTrace(traceID)

	_, err := ic.Call(context.Background(), "exec_kubectl_cmd_safely", nil)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	closed, err := st.EndTrace(traceID, false, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, closed.ToolCalls, 1)
	assert.False(t, closed.ToolCalls[0].Success)
}

func TestCall_MasksSecretsInToolResponseBeforeRecording(t *testing.T) {
	st := trace.NewStore(t.TempDir())
	traceID := newTraceForTest(t, st, domain.Diagnosis)

	caller := fake.NewToolCaller(map[string]*adapters.ToolCallResult{
		"get_secret": {Success: true, Response: `{"kind":"Secret","data":{"password":"c3VwZXJzZWNyZXQ="}}`},
	})
	ic := New(caller, st, masking.NewService(true), true)
	ic.SetActiveTrace(traceID)

	_, err := ic.Call(context.Background(), "get_secret", nil)
	require.NoError(t, err)

	closed, err := st.EndTrace(traceID, true, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, closed.ToolCalls, 1)
	assert.NotContains(t, closed.ToolCalls[0].Response, "c3VwZXJzZWNyZXQ=")
}

type erroringToolCaller struct{}

func (e *erroringToolCaller) Call(context.Context, string, map[string]any) (*adapters.ToolCallResult, error) {
	return nil, errBoom{}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
