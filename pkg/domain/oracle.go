package domain

// OracleResult is the structured verdict an oracle/judge returns for a
// single stage, given the agent's final submission and the problem's
// ground truth.
type OracleResult struct {
	Success     bool           `json:"success"`
	Accuracy    *float64       `json:"accuracy,omitempty"`
	Expected    any            `json:"expected,omitempty"`
	Actual      any            `json:"actual,omitempty"`
	Missing     []any          `json:"missing,omitempty"`
	Extra       []any          `json:"extra,omitempty"`
	SubOracles  []OracleResult `json:"sub_oracles,omitempty"`
}

// EnhancedOracleResult is the per-stage expected/actual/missing/extra/
// accuracy object the Trace Store derives on endTrace when both
// groundTruth and raw oracle results are supplied.
type EnhancedOracleResult struct {
	Stage    string   `json:"stage"`
	Expected any      `json:"expected,omitempty"`
	Actual   any      `json:"actual,omitempty"`
	Missing  []any    `json:"missing,omitempty"`
	Extra    []any    `json:"extra,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// NormalizeStage maps the oracle stage-key aliases onto a single
// canonical form. "Diagnosis" is accepted as an alias of "Detection".
func NormalizeStage(stage string) string {
	if stage == "Diagnosis" {
		return "Detection"
	}
	return stage
}
