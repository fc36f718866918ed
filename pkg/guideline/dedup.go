package guideline

import "strings"

const (
	llmDedupeTrustThreshold = 20
	dedupeJaccardThreshold  = 0.80
)

// verificationMarkers are the rendering-time decorations render.go prepends
// to a point's content; an LLM fed back a rendered prompt may echo one of
// these in a proposal, so dedupe comparisons strip them first.
var verificationMarkers = []string{"✅ VERIFIED", "⚠️ UNVERIFIED (being tested)"}

func stripMarkers(s string) string {
	for _, m := range verificationMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

func dedupeTokenize(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(stripMarkers(s)))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func dedupeJaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// isDuplicateInsight reports whether content is a near-duplicate (Jaccard
// >= 0.80 after stripping verification markers) of any existing learned
// point's content. Used only once the existing learned set exceeds
// llmDedupeTrustThreshold, below which the LLM's own dedupe is trusted.
func isDuplicateInsight(content string, existingContents []string) bool {
	candidate := dedupeTokenize(content)
	for _, existing := range existingContents {
		if dedupeJaccard(candidate, dedupeTokenize(existing)) >= dedupeJaccardThreshold {
			return true
		}
	}
	return false
}
