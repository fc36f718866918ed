package trace

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/apierrors"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// EndTrace finalizes trace id: computes metrics, optionally derives an
// enhanced per-stage oracle-results object when both groundTruth and
// oracleResults are supplied, persists the trace under the Store's current
// root, and removes it from the live set. Fails with
// UnknownTrace if id is not live.
func (s *Store) EndTrace(
	id string,
	success bool,
	finalSubmission *string,
	groundTruth any,
	oracleResults map[string]*domain.OracleResult,
) (*AgentTrace, error) {
	s.mu.Lock()
	t, ok := s.live[id]
	if !ok {
		s.mu.Unlock()
		return nil, apierrors.NewUnknownTraceError(id)
	}
	delete(s.live, id)
	root := s.root
	s.mu.Unlock()

	now := time.Now()
	t.EndedAt = &now
	t.Success = success
	t.FinalSubmission = finalSubmission
	t.GroundTruth = groundTruth
	t.closed = true

	t.Metrics = computeMetrics(t)

	if groundTruth != nil && len(oracleResults) > 0 {
		t.OracleResults = deriveEnhancedOracleResults(groundTruth, oracleResults)
		if acc := firstAccuracy(t.OracleResults); acc != nil {
			t.Metrics.Accuracy = acc
		}
	}

	if root != "" {
		if err := persistTrace(root, t); err != nil {
			// Write failures are fatal to this trace's learning step only
			//: already-closed traces elsewhere are
			// unaffected, so we surface the error but the trace remains
			// removed from the live set.
			return t, err
		}
	}
	return t, nil
}

func computeMetrics(t *AgentTrace) Metrics {
	m := Metrics{
		ToolCallCount: len(t.ToolCalls),
	}
	if t.EndedAt != nil {
		m.DurationSeconds = t.EndedAt.Sub(t.StartedAt).Seconds()
	}
	if len(t.ToolCalls) > 0 {
		successes := 0
		for _, c := range t.ToolCalls {
			if c.Success {
				successes++
			}
		}
		m.ToolSuccessRate = float64(successes) / float64(len(t.ToolCalls))
	}
	return m
}

func deriveEnhancedOracleResults(groundTruth any, raw map[string]*domain.OracleResult) map[string]domain.EnhancedOracleResult {
	out := make(map[string]domain.EnhancedOracleResult, len(raw))
	for stage, r := range raw {
		if r == nil {
			continue
		}
		enhanced := domain.EnhancedOracleResult{
			Stage:    domain.NormalizeStage(stage),
			Expected: r.Expected,
			Actual:   r.Actual,
			Missing:  r.Missing,
			Extra:    r.Extra,
			Accuracy: r.Accuracy,
		}
		if enhanced.Expected == nil {
			enhanced.Expected = groundTruth
		}
		out[enhanced.Stage] = enhanced
	}
	return out
}

func firstAccuracy(results map[string]domain.EnhancedOracleResult) *float64 {
	for _, r := range results {
		if r.Accuracy != nil {
			return r.Accuracy
		}
	}
	return nil
}
