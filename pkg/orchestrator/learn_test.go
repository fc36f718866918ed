package orchestrator

import (
	"log/slog"
	"testing"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/guideline"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

func TestExistingInsights_OnlyLearnedAndMerged(t *testing.T) {
	pts := []*points.PromptPoint{
		{ID: "1", Source: points.SourceOriginal, Content: "original, excluded"},
		{ID: "2", Source: points.SourceLearned, Content: "learned, included"},
		{ID: "3", Source: points.SourceMerged, Content: "merged, included"},
	}
	got := existingInsights(pts)
	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(got), got)
	}
	for _, ins := range got {
		if ins.Type != points.InsightGeneral {
			t.Fatalf("expected every reconstructed insight to be tagged general, got %s", ins.Type)
		}
	}
}

func TestLoadConfig_MissingDirOrFile_ReturnsEmptyMap(t *testing.T) {
	if cfg := loadConfig("", domain.Diagnosis); len(cfg) != 0 {
		t.Fatalf("expected empty config for blank dir, got %v", cfg)
	}
	if cfg := loadConfig(t.TempDir(), domain.Diagnosis); len(cfg) != 0 {
		t.Fatalf("expected empty config for a dir with no config file yet, got %v", cfg)
	}
}

func TestLoadConfig_ReadsPersistedValue(t *testing.T) {
	dir := t.TempDir()
	path := storelayout.ConfigFilePath(dir, string(domain.Diagnosis))
	if err := storelayout.WriteJSONAtomic(path, map[string]any{"max_steps": float64(12)}); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	cfg := loadConfig(dir, domain.Diagnosis)
	if cfg["max_steps"] != float64(12) {
		t.Fatalf("expected max_steps=12, got %v", cfg)
	}
}

func TestRebuildOrFallback_RestoresPriorVersionWhenNothingApplied(t *testing.T) {
	mgr := points.New()
	gen := guideline.New(mgr, basePrompts())
	o := &Orchestrator{generator: gen, log: slog.Default()}

	priorPromptsDir := t.TempDir()
	if _, _, err := gen.Rebuild(domain.Diagnosis, priorPromptsDir); err != nil {
		t.Fatalf("seed prior version: %v", err)
	}

	run, err := storelayout.NewRunRootAt(t.TempDir())
	if err != nil {
		t.Fatalf("new run root: %v", err)
	}
	roundRoot, err := storelayout.NewRoundRoot(run, 1)
	if err != nil {
		t.Fatalf("new round root: %v", err)
	}

	cfg := learnConfig{
		RoundRoot:       roundRoot,
		PriorPromptsDir: priorPromptsDir,
		PriorVersions:   map[domain.AgentKind]string{domain.Diagnosis: "1.0.1"},
	}

	var notes []string
	version, err := o.rebuildOrFallback(domain.Diagnosis, cfg, false, false, &notes)
	if err != nil {
		t.Fatalf("rebuildOrFallback: %v", err)
	}
	if version != "1.0.2" {
		t.Fatalf("expected the restore to still advance the version chain to 1.0.2, got %s", version)
	}
	if len(notes) == 0 {
		t.Fatal("expected a note explaining the restore")
	}
}

func TestRebuildOrFallback_NoPriorRound_FallsBackToBaseRebuild(t *testing.T) {
	mgr := points.New()
	gen := guideline.New(mgr, basePrompts())
	o := &Orchestrator{generator: gen, log: slog.Default()}

	run, err := storelayout.NewRunRootAt(t.TempDir())
	if err != nil {
		t.Fatalf("new run root: %v", err)
	}
	roundRoot, err := storelayout.NewRoundRoot(run, 1)
	if err != nil {
		t.Fatalf("new round root: %v", err)
	}

	var notes []string
	version, err := o.rebuildOrFallback(domain.Diagnosis, learnConfig{RoundRoot: roundRoot}, false, false, &notes)
	if err != nil {
		t.Fatalf("rebuildOrFallback: %v", err)
	}
	if version != "1.0.1" {
		t.Fatalf("expected the first-ever rebuild to land on 1.0.1, got %s", version)
	}
	content := readFileString(t, storelayout.ActivePromptPath(roundRoot.Prompts(), string(domain.Diagnosis), guideline.PromptExt))
	if content != testBasePrompt {
		t.Fatalf("expected the base prompt verbatim, got %q", content)
	}
}

func TestRebuildOrFallback_AppliedSignal_Rebuilds(t *testing.T) {
	mgr := points.New()
	gen := guideline.New(mgr, basePrompts())
	o := &Orchestrator{generator: gen, log: slog.Default()}

	run, err := storelayout.NewRunRootAt(t.TempDir())
	if err != nil {
		t.Fatalf("new run root: %v", err)
	}
	roundRoot, err := storelayout.NewRoundRoot(run, 1)
	if err != nil {
		t.Fatalf("new round root: %v", err)
	}

	var notes []string
	version, err := o.rebuildOrFallback(domain.Diagnosis, learnConfig{RoundRoot: roundRoot}, true, false, &notes)
	if err != nil {
		t.Fatalf("rebuildOrFallback: %v", err)
	}
	if version != "1.0.1" {
		t.Fatalf("expected version 1.0.1, got %s", version)
	}
}
