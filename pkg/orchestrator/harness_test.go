package orchestrator

import (
	"os"
	"testing"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/guideline"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/interceptor"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/masking"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/optimizer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const testBasePrompt = "You are a Kubernetes SRE agent. Investigate and resolve the reported fault."

func basePrompts() map[domain.AgentKind]string {
	out := make(map[domain.AgentKind]string, len(domain.AllAgentKinds()))
	for _, k := range domain.AllAgentKinds() {
		out[k] = testBasePrompt
	}
	return out
}

// harness wires a fresh Orchestrator over an in-memory trace Store, Point
// Manager, Guideline Generator and scriptable C8 fakes, for exercising
// Run end-to-end without any real LLM or cluster.
type harness struct {
	orch    *Orchestrator
	store   *trace.Store
	points  *points.Manager
	gen     *guideline.Generator
	oracle  *fake.Oracle
	llm     *fake.LLM
	outRoot string
}

func newHarness(t *testing.T, llm *fake.LLM, oracleVerdicts map[string]*domain.OracleResult, steps ...fake.Step) *harness {
	return newHarnessWithTools(t, llm, oracleVerdicts, nil, steps...)
}

func newHarnessWithTools(t *testing.T, llm *fake.LLM, oracleVerdicts map[string]*domain.OracleResult, toolResults map[string]*adapters.ToolCallResult, steps ...fake.Step) *harness {
	t.Helper()

	outRoot := t.TempDir()
	store := trace.NewStore("")
	mgr := points.New()
	gen := guideline.New(mgr, basePrompts())
	az := analyzer.New()
	if llm == nil {
		llm = fake.NewLLM(`{}`)
	}
	opt := optimizer.New(llm)
	toolCaller := fake.NewToolCaller(toolResults)
	icpt := interceptor.New(toolCaller, store, masking.NewService(true), true)
	runtime := fake.NewAgentRuntime(icpt, steps...)
	oracle := fake.NewOracle(oracleVerdicts)

	orch := New(Deps{
		Store:       store,
		Points:      mgr,
		Generator:   gen,
		Analyzer:    az,
		Optimizer:   opt,
		Interceptor: icpt,
		Runtime:     runtime,
		Oracle:      oracle,
	})

	return &harness{orch: orch, store: store, points: mgr, gen: gen, oracle: oracle, llm: llm, outRoot: outRoot}
}

func allStagesStep(kind domain.AgentKind, submission string) fake.Step {
	return fake.Step{Kind: kind, Tools: []string{"get_pods"}, Submission: submission}
}

func fullPipelineSteps(submission string) []fake.Step {
	var steps []fake.Step
	for _, k := range domain.AllAgentKinds() {
		steps = append(steps, allStagesStep(k, submission))
	}
	return steps
}

func okVerdictsForAllStages() map[string]*domain.OracleResult {
	out := make(map[string]*domain.OracleResult, len(domain.AllAgentKinds()))
	for _, k := range domain.AllAgentKinds() {
		out[domain.NormalizeStage(string(k))] = &domain.OracleResult{Success: true}
	}
	return out
}

func problemSpecs(n int) []ProblemSpec {
	var out []ProblemSpec
	for i := 0; i < n; i++ {
		out = append(out, ProblemSpec{
			Context: domain.ProblemContext{
				ProblemID:   problemID(i),
				Application: "checkout",
				Namespace:   "prod",
				Description: "pods crash-looping",
			},
			GroundTruth: map[string]any{"root_cause": "oom"},
		})
	}
	return out
}

func problemID(i int) string {
	return "problem-" + string(rune('a'+i))
}

func readFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
