// Package guideline implements the Guideline Generator (C4): it turns
// analyzer patterns and LLM-proposed insights into points through the
// Point Manager, then rebuilds and versions each AgentKind's active
// prompt. The base prompt is never edited — only points change.
package guideline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/analyzer"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/points"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/storelayout"
)

// PromptExt is the file extension active/versioned prompt artifacts are
// written with — plain text, since a rebuilt prompt is markdown-ish prose,
// not structured data.
const PromptExt = "md"

// Generator owns versioning and rebuild for every AgentKind's active
// prompt, delegating all point storage to the injected Manager.
type Generator struct {
	manager     *points.Manager
	basePrompts map[domain.AgentKind]string

	mu       sync.Mutex
	versions map[domain.AgentKind]semver
}

// New creates a Generator over manager, with basePrompts supplying each
// AgentKind's immutable base prompt text.
func New(manager *points.Manager, basePrompts map[domain.AgentKind]string) *Generator {
	return &Generator{
		manager:     manager,
		basePrompts: basePrompts,
		versions:    make(map[domain.AgentKind]semver),
	}
}

// BasePrompt returns kind's immutable base prompt.
func (g *Generator) BasePrompt(kind domain.AgentKind) string { return g.basePrompts[kind] }

// CurrentPrompt renders kind's prompt from its current active points
// without bumping the version — used to describe the round-in-progress
// to the LLM Optimizer ahead of the next Rebuild.
func (g *Generator) CurrentPrompt(kind domain.AgentKind) string {
	return points.RebuildPrompt(g.basePrompts[kind], g.manager.ActivePoints(kind))
}

// Version returns kind's current version id, "1.0.0" before any rebuild.
func (g *Generator) Version(kind domain.AgentKind) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.versionLocked(kind).String()
}

func (g *Generator) versionLocked(kind domain.AgentKind) semver {
	v, ok := g.versions[kind]
	if !ok {
		v = initialVersion()
		g.versions[kind] = v
	}
	return v
}

// IngestPatterns converts analyzer patterns into candidate insights per the
// one-insight-per-FailurePattern/ToolEffectiveness-branch/ThinkingPattern
// policy, admits them through the Manager, and resolves any conflicts the
// new points introduce. Returns the newly added points (nil if none).
func (g *Generator) IngestPatterns(ctx context.Context, kind domain.AgentKind, patterns []analyzer.Pattern, now func() time.Time) ([]*points.PromptPoint, error) {
	var insights []points.Insight
	for _, p := range patterns {
		if ins, ok := insightFromPattern(p); ok {
			insights = append(insights, ins)
		}
	}
	return g.ingest(ctx, kind, insights, now)
}

// IngestInsights admits LLM-proposed insights, trusting the LLM's own
// dedupe while the existing learned set is small (<=20) and falling back
// to a Jaccard textual-similarity check once it grows past that.
func (g *Generator) IngestInsights(ctx context.Context, kind domain.AgentKind, proposals []points.Insight, now func() time.Time) ([]*points.PromptPoint, error) {
	existing := learnedContents(g.manager.Points(kind))

	toAdd := proposals
	if len(existing) > llmDedupeTrustThreshold {
		toAdd = nil
		for _, p := range proposals {
			if isDuplicateInsight(p.Content, existing) {
				continue
			}
			toAdd = append(toAdd, p)
			existing = append(existing, p.Content)
		}
	}
	return g.ingest(ctx, kind, toAdd, now)
}

func (g *Generator) ingest(ctx context.Context, kind domain.AgentKind, insights []points.Insight, now func() time.Time) ([]*points.PromptPoint, error) {
	if len(insights) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	for _, p := range g.manager.Points(kind) {
		seen[p.ID] = true
	}

	var added []*points.PromptPoint
	for _, ins := range insights {
		p := g.manager.AddLearnedInsight(kind, ins, now)
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		added = append(added, p)
	}
	if len(added) == 0 {
		return nil, nil
	}

	ids := make([]string, len(added))
	for i, p := range added {
		ids[i] = p.ID
	}
	conflicts, err := g.manager.DetectConflictsIncremental(ctx, kind, ids)
	if err != nil {
		return added, err
	}
	g.manager.ResolveConflicts(kind, conflicts)
	return added, nil
}

func learnedContents(pts []*points.PromptPoint) []string {
	var out []string
	for _, p := range pts {
		if p.Source == points.SourceLearned || p.Source == points.SourceMerged {
			out = append(out, p.Content)
		}
	}
	return out
}

// Rebuild renders kind's active prompt from its current active points,
// assigns it the next version id, and persists both the active prompt and
// the versioned artifact into promptsDir. Returns the new version and the
// rendered prompt text.
func (g *Generator) Rebuild(kind domain.AgentKind, promptsDir string) (string, string, error) {
	active := g.manager.ActivePoints(kind)
	prompt := points.RebuildPrompt(g.basePrompts[kind], active)

	g.mu.Lock()
	next := g.versionLocked(kind).next()
	g.versions[kind] = next
	g.mu.Unlock()

	if err := g.writePrompt(kind, promptsDir, next.String(), prompt); err != nil {
		return "", "", err
	}
	return next.String(), prompt, nil
}

func (g *Generator) writePrompt(kind domain.AgentKind, promptsDir, version, prompt string) error {
	activePath := storelayout.ActivePromptPath(promptsDir, string(kind), PromptExt)
	if err := storelayout.WriteFileAtomic(activePath, []byte(prompt)); err != nil {
		return fmt.Errorf("write active prompt for %s: %w", kind, err)
	}
	versionedPath := storelayout.VersionedPromptPath(promptsDir, string(kind), version, PromptExt)
	if err := storelayout.WriteFileAtomic(versionedPath, []byte(prompt)); err != nil {
		return fmt.Errorf("write version %s prompt for %s: %w", version, kind, err)
	}
	return nil
}

// Reset removes every learned point for every AgentKind and restores each
// active prompt to its base prompt exactly. History (version artifacts
// already on disk) is left untouched.
func (g *Generator) Reset(promptsDir string) error {
	for _, kind := range domain.AllAgentKinds() {
		g.manager.Reset(kind)
		path := storelayout.ActivePromptPath(promptsDir, string(kind), PromptExt)
		if err := storelayout.WriteFileAtomic(path, []byte(g.basePrompts[kind])); err != nil {
			return fmt.Errorf("reset active prompt for %s: %w", kind, err)
		}
	}
	g.mu.Lock()
	g.versions = make(map[domain.AgentKind]semver)
	g.mu.Unlock()
	return nil
}

// Rollback restores a prior version artifact as the new active prompt for
// kind. Per policy a rollback is itself a rebuild: it is assigned a new,
// higher version id rather than reusing the restored one, keeping the
// version chain linear.
func (g *Generator) Rollback(kind domain.AgentKind, promptsDir, fromVersion string) (string, error) {
	fromPath := storelayout.VersionedPromptPath(promptsDir, string(kind), fromVersion, PromptExt)
	prompt, err := readFile(fromPath)
	if err != nil {
		return "", fmt.Errorf("read version %s prompt for %s: %w", fromVersion, kind, err)
	}

	g.mu.Lock()
	next := g.versionLocked(kind).next()
	g.versions[kind] = next
	g.mu.Unlock()

	if err := g.writePrompt(kind, promptsDir, next.String(), prompt); err != nil {
		return "", err
	}
	return next.String(), nil
}

// SeedVersion primes kind's version counter from a prior run's recorded
// value, so a resumed run's next Rebuild continues the same linear chain
// instead of restarting at 1.0.0.
func (g *Generator) SeedVersion(kind domain.AgentKind, version string) error {
	v, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("seed version for %s: %w", kind, err)
	}
	g.mu.Lock()
	g.versions[kind] = v
	g.mu.Unlock()
	return nil
}

// RestorePriorVersion reads fromVersion's artifact out of a different
// round's prompts directory (fromPromptsDir) and re-saves it as the next
// version under the current round's directory (toPromptsDir). Used by
// the Orchestrator's fallback policy: when neither the analyzer nor the
// LLM produced a usable prompt this round, the previous round's version
// is carried forward rather than left stale.
func (g *Generator) RestorePriorVersion(kind domain.AgentKind, fromPromptsDir, toPromptsDir, fromVersion string) (string, error) {
	fromPath := storelayout.VersionedPromptPath(fromPromptsDir, string(kind), fromVersion, PromptExt)
	prompt, err := readFile(fromPath)
	if err != nil {
		return "", fmt.Errorf("read version %s prompt for %s: %w", fromVersion, kind, err)
	}

	g.mu.Lock()
	next := g.versionLocked(kind).next()
	g.versions[kind] = next
	g.mu.Unlock()

	if err := g.writePrompt(kind, toPromptsDir, next.String(), prompt); err != nil {
		return "", err
	}
	return next.String(), nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
