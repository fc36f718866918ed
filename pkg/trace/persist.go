package trace

import (
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

func persistTrace(tracesDir string, t *AgentTrace) error {
	closedAt := t.StartedAt
	if t.EndedAt != nil {
		closedAt = *t.EndedAt
	}
	path := storelayout.TraceFilePath(tracesDir, string(t.Kind), t.Problem.ProblemID, t.TraceID, closedAt)
	return storelayout.WriteJSONAtomic(path, t)
}

// loadTracesFromDir reads every trace file in dir, skipping files that
// fail to parse as an AgentTrace (a corrupt trace file from a crashed
// round should not fail an entire analysis pass).
func loadTracesFromDir(dir string) ([]*AgentTrace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []*AgentTrace
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var t AgentTrace
		if err := storelayout.ReadJSON(filepath.Join(dir, e.Name()), &t); err != nil {
			continue
		}
		t.closed = true
		out = append(out, &t)
	}
	return out, nil
}
