package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dario.cat/mergo"

	"github.com/codeready-toolchain/tarsy-metalearn/internal/jsonutil"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/trace"
)

const configSystemPrompt = "You tune scalar configuration knobs (e.g. max steps per stage) for a " +
	"Kubernetes SRE agent based on its observed step usage. Respond with strict JSON only, matching: " +
	"{\"config\": {\"<knob>\": <value>, ...}}. Only include knobs you want to change."

type wireConfigResponse struct {
	Config map[string]any `json:"config"`
}

// ProposeConfig is the lower-stakes, parallel companion to Propose: given
// traces' step usage it asks the LLM for scalar tuning-knob changes and
// merges the result into existingConfig, preserving every field the LLM
// did not mention. A parse failure (after maxProposeAttempts retries)
// leaves existingConfig untouched and reports success=false.
func (o *Optimizer) ProposeConfig(ctx context.Context, kind domain.AgentKind, traces []*trace.AgentTrace, existingConfig map[string]any) (map[string]any, bool, error) {
	prompt := buildConfigPrompt(kind, traces, existingConfig)
	system := configSystemPrompt

	for attempt := 0; attempt < maxProposeAttempts; attempt++ {
		text, err := o.llm.Infer(ctx, []adapters.Message{{Role: "user", Content: prompt}}, &system)
		if err != nil {
			return existingConfig, false, err
		}
		proposed, err := parseConfigResponse(text)
		if err != nil {
			continue
		}
		merged, err := mergeConfig(existingConfig, proposed)
		if err != nil {
			return existingConfig, false, err
		}
		return merged, true, nil
	}
	return existingConfig, false, nil
}

func parseConfigResponse(text string) (map[string]any, error) {
	raw, ok := jsonutil.ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in LLM response")
	}
	var wire wireConfigResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal config response: %w", err)
	}
	return wire.Config, nil
}

// mergeConfig overlays proposed onto a copy of existing, leaving any key
// existing has that proposed doesn't mention untouched.
func mergeConfig(existing, proposed map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(existing))
	for k, v := range existing {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, proposed, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge proposed config: %w", err)
	}
	return merged, nil
}

func buildConfigPrompt(kind domain.AgentKind, traces []*trace.AgentTrace, existingConfig map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent kind: %s\n\n", kind)

	b.WriteString("Step usage per trace (tool_call_count):\n")
	for _, t := range traces {
		fmt.Fprintf(&b, "- %s: %d steps, success=%v\n", t.TraceID, t.Metrics.ToolCallCount, t.Success)
	}
	b.WriteString("\n")

	if len(existingConfig) > 0 {
		data, _ := json.Marshal(existingConfig)
		fmt.Fprintf(&b, "Current config: %s\n\n", data)
	}

	b.WriteString("Propose only the scalar knobs that should change for this agent kind.")
	return b.String()
}
