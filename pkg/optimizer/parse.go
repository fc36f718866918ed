package optimizer

import (
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/tarsy-metalearn/internal/jsonutil"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
)

// Response is the strict-JSON shape the LLM must reply with: a list of
// proposed insights.
type Response struct {
	NewInsights []points.Insight
}

type wireInsight struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Reasoning string `json:"reasoning"`
}

type wireResponse struct {
	NewInsights []wireInsight `json:"new_insights"`
}

func parseResponse(text string) (Response, error) {
	raw, ok := jsonutil.ExtractJSON(text)
	if !ok {
		return Response{}, fmt.Errorf("no JSON object found in LLM response")
	}
	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Response{}, fmt.Errorf("unmarshal new_insights response: %w", err)
	}

	out := Response{NewInsights: make([]points.Insight, 0, len(wire.NewInsights))}
	for _, w := range wire.NewInsights {
		out.NewInsights = append(out.NewInsights, points.Insight{
			Type:      wireInsightType(w.Type),
			Content:   w.Content,
			Reasoning: w.Reasoning,
		})
	}
	return out, nil
}

func wireInsightType(s string) points.InsightType {
	switch points.InsightType(s) {
	case points.InsightWarning, points.InsightCaution, points.InsightRecommendation, points.InsightThinking, points.InsightGeneral:
		return points.InsightType(s)
	default:
		return points.InsightGeneral
	}
}
