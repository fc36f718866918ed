package optimizer

// RewardSpec weighs the three signals a trace's reward is built from.
type RewardSpec struct {
	SuccessWeight  float64
	LatencyWeight  float64
	AttemptsWeight float64
}

// DefaultRewardSpec returns the default weighting: success dominates,
// latency and attempts shape the reward only at the margin.
func DefaultRewardSpec() RewardSpec {
	return RewardSpec{SuccessWeight: 2.0, LatencyWeight: -0.3, AttemptsWeight: -0.2}
}

// minSuccessRateForShaping is the overall success rate below which
// latency/attempts shaping is suspended in favor of correctness alone.
const minSuccessRateForShaping = 0.9

// Reward computes success_weight*1_success + latency_weight*latency_s +
// attempts_weight*tool_call_count. When overallSuccessRate is non-nil and
// below 0.9, the latency and attempts terms are forced to zero so the
// reward prioritizes correctness over efficiency.
func (r RewardSpec) Reward(success bool, latencySeconds float64, toolCallCount int, overallSuccessRate *float64) float64 {
	latencyWeight := r.LatencyWeight
	attemptsWeight := r.AttemptsWeight
	if overallSuccessRate != nil && *overallSuccessRate < minSuccessRateForShaping {
		latencyWeight = 0
		attemptsWeight = 0
	}

	var successTerm float64
	if success {
		successTerm = r.SuccessWeight
	}
	return successTerm + latencyWeight*latencySeconds + attemptsWeight*float64(toolCallCount)
}
