package orchestrator

import (
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

// RoundStatus is the terminal status recorded for a round.
type RoundStatus string

const (
	RoundOK     RoundStatus = "ok"
	RoundFailed RoundStatus = "failed"
)

// RoundInfo is the per-round record persisted as round_info.json and
// returned to the caller of Run.
type RoundInfo struct {
	Round           int                      `json:"round"`
	StartedAt       time.Time                `json:"started_at"`
	EndedAt         time.Time                `json:"ended_at"`
	DurationSeconds float64                  `json:"duration_seconds"`
	Status          RoundStatus              `json:"status"`
	ProblemsRun     int                      `json:"problems_run"`
	Versions        map[domain.AgentKind]string `json:"versions"`
	PromptsDir      string                   `json:"prompts_dir"`
	Notes           []string                 `json:"notes,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

// RunSummary is what Orchestrator.Run returns: the run root and every
// round's outcome in order.
type RunSummary struct {
	RunRoot string      `json:"run_root"`
	Rounds  []RoundInfo `json:"rounds"`
}
