package config

import "time"

// DefaultOptimizerMinTraces mirrors orchestrator's own internal default,
// surfaced here so a YAML file that omits optimizer_min_traces gets the
// same value the Orchestrator would apply on its own.
const DefaultOptimizerMinTraces = 5

const (
	defaultInterProblemDelay = 0
	defaultInterRoundDelay   = 0
	defaultHTTPMode          = "release"
)

func defaultDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
