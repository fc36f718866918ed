package optimizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const maxProposeAttempts = 3

// Optimizer is the LLM Optimizer (C5): it proposes new instruction
// insights and, separately, scalar config-tuning knobs, from a round's
// traces.
type Optimizer struct {
	llm adapters.LLM
}

// New creates an Optimizer backed by llm.
func New(llm adapters.LLM) *Optimizer {
	return &Optimizer{llm: llm}
}

// ProposalContext carries everything Propose needs to describe a round to
// the LLM beyond the raw traces themselves.
type ProposalContext struct {
	CurrentPrompt      string
	Patterns           []analyzer.Pattern
	GroundTruthGaps    []string
	ExistingInsights   []points.Insight
	Reward             RewardSpec
	OverallSuccessRate *float64
}

// Propose builds a structured prompt describing traces' metrics,
// patterns, ground-truth gaps, and existing insights, then asks the LLM
// for new_insights. It retries up to three times on a parse failure and
// returns (response, success); success is false only once every attempt's
// response failed to parse, in which case the caller must fall back to
// the previous prompt version. A non-nil error indicates an LLM call
// itself failed (e.g. a propagated rate-limit or cancellation) rather
// than a parse failure, and is returned immediately without retrying.
func (o *Optimizer) Propose(ctx context.Context, kind domain.AgentKind, traces []*trace.AgentTrace, pctx ProposalContext) (Response, bool, error) {
	prompt := buildProposalPrompt(kind, traces, pctx)
	system := proposalSystemPrompt

	for attempt := 0; attempt < maxProposeAttempts; attempt++ {
		text, err := o.llm.Infer(ctx, []adapters.Message{{Role: "user", Content: prompt}}, &system)
		if err != nil {
			return Response{}, false, err
		}
		resp, err := parseResponse(text)
		if err == nil {
			return resp, true, nil
		}
	}
	return Response{}, false, nil
}

const proposalSystemPrompt = "You are the meta-learning optimizer for a set of Kubernetes SRE agents. " +
	"Respond with strict JSON only, matching: {\"new_insights\": [{\"type\": \"warning|caution|recommendation|thinking_guidance|general\", \"content\": \"...\", \"reasoning\": \"...\"}]}."

func buildProposalPrompt(kind domain.AgentKind, traces []*trace.AgentTrace, pctx ProposalContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent kind: %s\n\n", kind)
	fmt.Fprintf(&b, "Current prompt:\n%s\n\n", pctx.CurrentPrompt)

	fmt.Fprintf(&b, "Metrics (%d traces):\n", len(traces))
	for _, m := range summarizeMetrics(traces, pctx.Reward, pctx.OverallSuccessRate) {
		b.WriteString("- " + m + "\n")
	}
	b.WriteString("\n")

	if len(pctx.Patterns) > 0 {
		b.WriteString("Observed patterns:\n")
		for _, p := range pctx.Patterns {
			fmt.Fprintf(&b, "- [%s] %s (confidence %.2f, frequency %d)\n", p.Type, p.Description, p.Confidence, p.Frequency)
		}
		b.WriteString("\n")
	}

	if len(pctx.GroundTruthGaps) > 0 {
		b.WriteString("Ground-truth gaps:\n")
		for _, g := range pctx.GroundTruthGaps {
			b.WriteString("- " + g + "\n")
		}
		b.WriteString("\n")
	}

	if len(pctx.ExistingInsights) > 0 {
		b.WriteString("Existing insights already in the prompt:\n")
		for _, ins := range pctx.ExistingInsights {
			b.WriteString("- " + ins.Content + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Propose new_insights that would have measurably improved this round's reward. Do not repeat existing insights.")
	return b.String()
}

func summarizeMetrics(traces []*trace.AgentTrace, reward RewardSpec, overallSuccessRate *float64) []string {
	if len(traces) == 0 {
		return []string{"no traces this round"}
	}
	var totalReward, totalDuration, totalSuccessRate float64
	var totalCalls int
	successes := 0
	for _, t := range traces {
		if t.Success {
			successes++
		}
		totalReward += reward.Reward(t.Success, t.Metrics.DurationSeconds, t.Metrics.ToolCallCount, overallSuccessRate)
		totalDuration += t.Metrics.DurationSeconds
		totalSuccessRate += t.Metrics.ToolSuccessRate
		totalCalls += t.Metrics.ToolCallCount
	}
	n := float64(len(traces))
	return []string{
		fmt.Sprintf("success rate: %.2f (%d/%d)", float64(successes)/n, successes, len(traces)),
		fmt.Sprintf("mean reward: %.3f", totalReward/n),
		fmt.Sprintf("mean duration: %.1fs", totalDuration/n),
		fmt.Sprintf("mean tool success rate: %.2f", totalSuccessRate/n),
		fmt.Sprintf("mean tool calls: %.1f", float64(totalCalls)/n),
	}
}
