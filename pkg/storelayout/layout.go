// Package storelayout implements the per-run, per-round persisted state
// layout: a root directory per run containing traces/, prompts/,
// configs/, and points/ subdirectories, plus round-level and run-level
// summary files. Writes are atomic (write-to-temp-then-rename).
package storelayout

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	TracesDir  = "traces"
	PromptsDir = "prompts"
	ConfigsDir = "configs"
	PointsDir  = "points"

	LearningResultsFile = "learning_results.json"
	RoundInfoFile       = "round_info.json"
)

// RunRoot is the root directory for a single operator-triggered run:
// <root>/run_<YYYYMMDD_HHMMSS>/.
type RunRoot struct {
	Path string
}

// NewRunRoot creates a fresh run root directory under base, named with the
// current time. Callers that need a deterministic name (tests, resume)
// should use NewRunRootAt.
func NewRunRoot(base string, now time.Time) (*RunRoot, error) {
	return NewRunRootAt(filepath.Join(base, fmt.Sprintf("run_%s", now.Format("20060102_150405"))))
}

// NewRunRootAt creates a run root at an exact path.
func NewRunRootAt(path string) (*RunRoot, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create run root %s: %w", path, err)
	}
	return &RunRoot{Path: path}, nil
}

// RoundRoot is one round's subtree within a RunRoot:
// <run_root>/round_<N>/{traces,prompts,configs,points}/.
type RoundRoot struct {
	Path  string
	Round int
}

// NewRoundRoot creates round n's subtree (and its four subdirectories)
// under run.
func NewRoundRoot(run *RunRoot, n int) (*RoundRoot, error) {
	path := filepath.Join(run.Path, fmt.Sprintf("round_%d", n))
	for _, sub := range []string{TracesDir, PromptsDir, ConfigsDir, PointsDir} {
		if err := os.MkdirAll(filepath.Join(path, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create round %d subdirectory %s: %w", n, sub, err)
		}
	}
	return &RoundRoot{Path: path, Round: n}, nil
}

func (r *RoundRoot) Traces() string  { return filepath.Join(r.Path, TracesDir) }
func (r *RoundRoot) Prompts() string { return filepath.Join(r.Path, PromptsDir) }
func (r *RoundRoot) Configs() string { return filepath.Join(r.Path, ConfigsDir) }
func (r *RoundRoot) Points() string  { return filepath.Join(r.Path, PointsDir) }

func (r *RoundRoot) LearningResultsPath() string {
	return filepath.Join(r.Path, LearningResultsFile)
}

func (r *RoundRoot) RoundInfoPath() string {
	return filepath.Join(r.Path, RoundInfoFile)
}

// PointsFilePath returns the path of the points file for kind within dir
// (either a RoundRoot.Points() directory or an arbitrary points/ directory
// supplied via --resume-from's sibling points/).
func PointsFilePath(pointsDir, agentKind string) string {
	return filepath.Join(pointsDir, fmt.Sprintf("%s_points.json", agentKind))
}

// ConfigFilePath returns the path of the scalar-config artifact for
// agentKind within a configs/ directory.
func ConfigFilePath(configsDir, agentKind string) string {
	return filepath.Join(configsDir, fmt.Sprintf("%s_config.json", agentKind))
}

// ActivePromptPath returns the path of the current active prompt file for
// kind within a prompts/ directory.
func ActivePromptPath(promptsDir, agentKind, ext string) string {
	return filepath.Join(promptsDir, fmt.Sprintf("active_%s_agent_prompts.%s", agentKind, ext))
}

// VersionedPromptPath returns the path of a specific version artifact for
// kind within a prompts/ directory.
func VersionedPromptPath(promptsDir, agentKind, version, ext string) string {
	return filepath.Join(promptsDir, fmt.Sprintf("%s_v%s.%s", agentKind, version, ext))
}

// TraceFilePath returns the file name for a closed trace: one
// self-describing file per trace, named with agent kind, problem id,
// timestamp, and trace id.
func TraceFilePath(tracesDir, agentKind, problemID, traceID string, closedAt time.Time) string {
	name := fmt.Sprintf("%s_%s_%s_%s.json", agentKind, problemID, closedAt.UTC().Format("20060102T150405Z"), traceID)
	return filepath.Join(tracesDir, name)
}

// CopyPointsDir copies every *_points.json file from src into dst,
// giving the Orchestrator an isolated working copy of the learned point
// set for the new round.
func CopyPointsDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read points dir %s: %w", src, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if err := WriteFileAtomic(filepath.Join(dst, e.Name()), data); err != nil {
			return fmt.Errorf("copy %s: %w", e.Name(), err)
		}
	}
	return nil
}
