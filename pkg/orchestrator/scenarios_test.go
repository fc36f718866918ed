package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

func roundPointsDir(runRoot string, n int) string {
	return filepath.Join(runRoot, fmt.Sprintf("round_%d", n), storelayout.PointsDir)
}

func TestRun_FreshRound_AllSucceed(t *testing.T) {
	h := newHarness(t, nil, okVerdictsForAllStages(), fullPipelineSteps("oom on node-3")...)

	summary, err := h.orch.Run(context.Background(), RunConfig{
		OutputRoot: h.outRoot,
		Problems:   problemSpecs(2),
		Rounds:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Rounds) != 1 {
		t.Fatalf("expected 1 round, got %d", len(summary.Rounds))
	}
	round := summary.Rounds[0]
	if round.Status != RoundOK {
		t.Fatalf("expected round ok, got %s (error: %s, notes: %v)", round.Status, round.Error, round.Notes)
	}
	if round.ProblemsRun != 2 {
		t.Fatalf("expected 2 problems run, got %d", round.ProblemsRun)
	}
	for _, kind := range domain.AllAgentKinds() {
		if round.Versions[kind] == "" {
			t.Fatalf("expected a version recorded for %s", kind)
		}
		path := storelayout.ActivePromptPath(round.PromptsDir, string(kind), "md")
		content := readFileString(t, path)
		if !strings.HasPrefix(content, testBasePrompt) {
			t.Fatalf("active prompt for %s does not start with base prompt: %q", kind, content)
		}
	}
}

func TestRun_FreshRound_NoSignal_FallsBackToBasePrompt(t *testing.T) {
	h := newHarness(t, nil, okVerdictsForAllStages(), fullPipelineSteps("oom on node-3")...)

	summary, err := h.orch.Run(context.Background(), RunConfig{
		OutputRoot: h.outRoot,
		Problems:   problemSpecs(1),
		Rounds:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	round := summary.Rounds[0]
	if round.Status != RoundOK {
		t.Fatalf("expected round ok, got %s", round.Status)
	}
	for _, kind := range domain.AllAgentKinds() {
		path := storelayout.ActivePromptPath(round.PromptsDir, string(kind), "md")
		content := readFileString(t, path)
		if content != testBasePrompt {
			t.Fatalf("expected %s's prompt to equal the base prompt verbatim with no learning signal, got %q", kind, content)
		}
		if round.Versions[kind] != "1.0.1" {
			t.Fatalf("expected %s to still bump to 1.0.1 on an empty rebuild, got %s", kind, round.Versions[kind])
		}
		if !strings.Contains(strings.Join(round.Notes, "\n"), "no prior version to restore") {
			t.Fatalf("expected a fallback note explaining the base-prompt rebuild, got notes: %v", round.Notes)
		}
	}
}

func TestRun_FailingTool_ProducesLearnedWarning(t *testing.T) {
	toolResults := map[string]*adapters.ToolCallResult{
		"get_pods": {Success: false, Response: "timeout contacting API server"},
	}
	h := newHarnessWithTools(t, nil, okVerdictsForAllStages(), toolResults, fullPipelineSteps("oom on node-3")...)

	summary, err := h.orch.Run(context.Background(), RunConfig{
		OutputRoot: h.outRoot,
		Problems:   problemSpecs(1),
		Rounds:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	round := summary.Rounds[0]
	if round.Status != RoundOK {
		t.Fatalf("expected round ok, got %s (%s)", round.Status, round.Error)
	}
	for _, kind := range domain.AllAgentKinds() {
		path := storelayout.ActivePromptPath(round.PromptsDir, string(kind), "md")
		content := readFileString(t, path)
		if !strings.Contains(content, "Learned Insights") {
			t.Fatalf("expected %s's prompt to gain a learned-insights section from the failed tool call, got %q", kind, content)
		}
	}
}

func TestRun_MultiRound_CarriesPointsAndPromptsForward(t *testing.T) {
	toolResults := map[string]*adapters.ToolCallResult{
		"get_pods": {Success: false, Response: "timeout contacting API server"},
	}
	h := newHarnessWithTools(t, nil, okVerdictsForAllStages(), toolResults, fullPipelineSteps("oom on node-3")...)

	summary, err := h.orch.Run(context.Background(), RunConfig{
		OutputRoot: h.outRoot,
		Problems:   problemSpecs(1),
		Rounds:     2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(summary.Rounds))
	}
	round1, round2 := summary.Rounds[0], summary.Rounds[1]
	if round1.Status != RoundOK || round2.Status != RoundOK {
		t.Fatalf("expected both rounds ok, got %s / %s", round1.Status, round2.Status)
	}

	for _, kind := range domain.AllAgentKinds() {
		if round1.Versions[kind] == round2.Versions[kind] {
			t.Fatalf("expected %s's version to advance between rounds, stuck at %s", kind, round1.Versions[kind])
		}

		pointsPath := storelayout.PointsFilePath(roundPointsDir(summary.RunRoot, 2), string(kind))
		readFileString(t, pointsPath) // carried-forward points file must exist under round 2.

		path2 := storelayout.ActivePromptPath(round2.PromptsDir, string(kind), "md")
		content2 := readFileString(t, path2)
		if !strings.Contains(content2, "Learned Insights") {
			t.Fatalf("expected %s's round-2 prompt to retain the learned insight carried forward, got %q", kind, content2)
		}
	}
}

func TestRun_LLMRateLimited_FallsBackToBasePromptWithoutFailingRound(t *testing.T) {
	// No tool failures and no prior round, so with the LLM rate-limited
	// on every call there is nothing for either source to apply: the
	// round should still complete and fall back to the base prompt.
	llm := fake.NewRateLimitedLLM(100)
	h := newHarness(t, llm, okVerdictsForAllStages(), fullPipelineSteps("oom on node-3")...)

	summary, err := h.orch.Run(context.Background(), RunConfig{
		OutputRoot:         h.outRoot,
		Problems:           problemSpecs(1),
		Rounds:             1,
		OptimizerMinTraces: 1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	round := summary.Rounds[0]
	if round.Status != RoundOK {
		t.Fatalf("expected round ok despite rate-limited LLM, got %s (%s)", round.Status, round.Error)
	}
	for _, kind := range domain.AllAgentKinds() {
		path := storelayout.ActivePromptPath(round.PromptsDir, string(kind), "md")
		content := readFileString(t, path)
		if content != testBasePrompt {
			t.Fatalf("expected %s's prompt to fall back to base when the LLM is unavailable, got %q", kind, content)
		}
	}
}

func TestSleep_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, 10*time.Millisecond); err == nil {
		t.Fatal("expected sleep to return an error on an already-cancelled context")
	}
}

func TestSleep_ZeroDuration_NoOp(t *testing.T) {
	if err := sleep(context.Background(), 0); err != nil {
		t.Fatalf("expected no error for a zero-duration sleep, got %v", err)
	}
}

func TestOverallSuccessRate(t *testing.T) {
	if rate := overallSuccessRate(nil); rate != nil {
		t.Fatalf("expected nil for no traces, got %v", *rate)
	}
}
