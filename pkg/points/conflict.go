package points

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/codeready-toolchain/tarsy-metalearn/internal/jsonutil"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/apierrors"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

var errNoJSONInJudgeResponse = errors.New("conflict judge response did not contain a JSON object")

// negationWords and affirmationWords drive the tool-name contradiction
// check: one side must use a negation, the other an affirmation.
var negationWords = []string{"avoid", "don't", "never"}
var affirmationWords = []string{"use", "should", "always"}

// modalPairs are the opposing modal pairs the lexical-contradiction layer
// looks for across two contents.
var modalPairs = [][2]string{
	{"use", "avoid"},
	{"should", "should not"},
	{"must", "must not"},
	{"do", "don't"},
	{"always", "never"},
}

const lexicalJaccardThreshold = 0.30

// conflictCache amortizes conflict-pair judgments across calls, keyed by
// the unordered pair of point ids.
type conflictCache struct {
	mu      sync.RWMutex
	results map[string]bool
}

func newConflictCache() *conflictCache {
	return &conflictCache{results: make(map[string]bool)}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

func (c *conflictCache) get(a, b string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.results[pairKey(a, b)]
	return v, ok
}

func (c *conflictCache) set(a, b string, conflicts bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[pairKey(a, b)] = conflicts
}

// conflictPair is one unordered pair flagged as conflicting.
type conflictPair struct {
	A, B string
}

// DetectConflictsIncremental runs the three-layer conflict detector
// (exact tool-name contradiction, lexical contradiction, optional LLM
// adjudication) over new↔existing and new↔new pairs only, caching
// results keyed by the unordered id pair. LLM calls (layer 3) happen
// outside any lock the caller holds.
func (m *Manager) DetectConflictsIncremental(ctx context.Context, kind domain.AgentKind, newIDs []string) ([]conflictPair, error) {
	all := m.Points(kind)
	byID := make(map[string]*PromptPoint, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	newSet := make(map[string]bool, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = true
	}

	var candidatePairs [][2]*PromptPoint
	for i, a := range all {
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(all); j++ {
			b := all[j]
			if !b.Active {
				continue
			}
			if !newSet[a.ID] && !newSet[b.ID] {
				continue
			}
			candidatePairs = append(candidatePairs, [2]*PromptPoint{a, b})
		}
	}

	var conflicts []conflictPair
	var needsLLM [][2]*PromptPoint

	for _, pair := range candidatePairs {
		a, b := pair[0], pair[1]
		if cached, ok := m.conflictCache.get(a.ID, b.ID); ok {
			if cached {
				conflicts = append(conflicts, conflictPair{A: a.ID, B: b.ID})
			}
			continue
		}

		if toolNameContradiction(a, b) {
			m.conflictCache.set(a.ID, b.ID, true)
			conflicts = append(conflicts, conflictPair{A: a.ID, B: b.ID})
			continue
		}
		if lexicalContradiction(a.Content, b.Content) {
			m.conflictCache.set(a.ID, b.ID, true)
			conflicts = append(conflicts, conflictPair{A: a.ID, B: b.ID})
			continue
		}
		if m.judgeEnabled {
			needsLLM = append(needsLLM, pair)
			continue
		}
		m.conflictCache.set(a.ID, b.ID, false)
	}

	if len(needsLLM) == 0 {
		return conflicts, nil
	}

	llmConflicts, err := m.adjudicateWithLLM(ctx, needsLLM)
	if err != nil {
		return conflicts, err
	}
	conflicts = append(conflicts, llmConflicts...)
	return conflicts, nil
}

// toolNameContradiction implements the first, cheapest conflict-detection
// layer: two tool_usage points about the same tool with contradictory
// affirmation/negation language.
func toolNameContradiction(a, b *PromptPoint) bool {
	if a.Category != CategoryToolUsage || b.Category != CategoryToolUsage {
		return false
	}
	toolA, okA := resolveToolName(a.Content)
	toolB, okB := resolveToolName(b.Content)
	if !okA || !okB || toolA != toolB {
		return false
	}
	aNeg, aAff := containsAny(a.Content, negationWords), containsAny(a.Content, affirmationWords)
	bNeg, bAff := containsAny(b.Content, negationWords), containsAny(b.Content, affirmationWords)
	return (aNeg && bAff) || (aAff && bNeg)
}

func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// lexicalContradiction implements layer 2: opposing modal pairs plus
// sufficient topic overlap.
func lexicalContradiction(a, b string) bool {
	if !hasOpposingModal(a, b) {
		return false
	}
	return jaccard(tokenize(a), tokenize(b)) >= lexicalJaccardThreshold
}

func hasOpposingModal(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, pair := range modalPairs {
		aHas0, aHas1 := strings.Contains(la, pair[0]), strings.Contains(la, pair[1])
		bHas0, bHas1 := strings.Contains(lb, pair[0]), strings.Contains(lb, pair[1])
		if (aHas0 && bHas1) || (aHas1 && bHas0) {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// adjudicationResponse is the strict JSON schema the LLM judge replies with.
type adjudicationResponse struct {
	Conflicts bool   `json:"conflicts"`
	Reason    string `json:"reason"`
}

const judgeMinInterCallDelay = 500 * time.Millisecond
const judgeMaxAttempts = 3

// adjudicateWithLLM implements layer 3: call the judge for each pair in
// sequence (rate-limited with a minimum inter-call delay), retrying with
// exponential backoff on rate-limit errors up to judgeMaxAttempts, and
// caching every result — positive or negative.
func (m *Manager) adjudicateWithLLM(ctx context.Context, pairs [][2]*PromptPoint) ([]conflictPair, error) {
	var conflicts []conflictPair
	var lastCall time.Time

	for _, pair := range pairs {
		a, b := pair[0], pair[1]

		if !lastCall.IsZero() {
			if wait := judgeMinInterCallDelay - time.Since(lastCall); wait > 0 {
				select {
				case <-ctx.Done():
					return conflicts, ctx.Err()
				case <-time.After(wait):
				}
			}
		}

		resp, err := m.callJudgeWithBackoff(ctx, a.Content, b.Content)
		lastCall = time.Now()
		if err != nil {
			return conflicts, err
		}

		m.conflictCache.set(a.ID, b.ID, resp.Conflicts)
		if resp.Conflicts {
			conflicts = append(conflicts, conflictPair{A: a.ID, B: b.ID})
		}
	}
	return conflicts, nil
}

func (m *Manager) callJudgeWithBackoff(ctx context.Context, contentA, contentB string) (*adjudicationResponse, error) {
	backoff := judgeMinInterCallDelay
	var lastErr error
	for attempt := 0; attempt < judgeMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := m.callJudgeOnce(ctx, contentA, contentB)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !apierrors.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (m *Manager) callJudgeOnce(ctx context.Context, contentA, contentB string) (*adjudicationResponse, error) {
	prompt := judgePrompt(contentA, contentB)
	text, err := m.judge.Infer(ctx, []adapters.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return nil, err
	}
	raw, ok := jsonutil.ExtractJSON(text)
	if !ok {
		return nil, apierrors.NewExternalFatalError("conflict_judge", errNoJSONInJudgeResponse)
	}
	var resp adjudicationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewExternalFatalError("conflict_judge", err)
	}
	return &resp, nil
}

func judgePrompt(a, b string) string {
	return "Do these two agent instructions conflict (is following both impossible or self-defeating)? " +
		"Reply with strict JSON: {\"conflicts\": boolean, \"reason\": string}.\n" +
		"Instruction A: " + a + "\nInstruction B: " + b
}
