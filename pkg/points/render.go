package points

import (
	"sort"
	"strings"
)

const learnedSectionTitle = "Learned Insights (Additive — Original Content Preserved Above)"

// RebuildPrompt appends the learned-insights section to basePrompt,
// grouping active points by category in the fixed order (tool_usage,
// workflow, warning, general, then any others alphabetically), sorted
// within each group by (verified desc, priority desc, success_count
// desc). The base prompt's bytes are never altered. Pure function: same
// points in, same string out.
func RebuildPrompt(basePrompt string, active []*PromptPoint) string {
	if len(active) == 0 {
		return basePrompt
	}

	groups := groupByCategory(active)
	order := orderedCategories(groups)

	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\n## ")
	sb.WriteString(learnedSectionTitle)
	sb.WriteString("\n")

	for _, cat := range order {
		pts := groups[cat]
		sort.Slice(pts, func(i, j int) bool { return rankLess(pts[i], pts[j]) })

		sb.WriteString("\n### ")
		sb.WriteString(strings.ToUpper(string(cat[:1])) + string(cat[1:]))
		sb.WriteString("\n")
		for _, p := range pts {
			sb.WriteString("- ")
			sb.WriteString(p.Content)
			sb.WriteString(" ")
			sb.WriteString(marker(p))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func marker(p *PromptPoint) string {
	if p.Verified {
		return "✅ VERIFIED"
	}
	return "⚠️ UNVERIFIED (being tested)"
}

func groupByCategory(points []*PromptPoint) map[Category][]*PromptPoint {
	groups := make(map[Category][]*PromptPoint)
	for _, p := range points {
		groups[p.Category] = append(groups[p.Category], p)
	}
	return groups
}

// orderedCategories returns the fixed four categories first (only if
// present), then any remaining categories alphabetically.
func orderedCategories(groups map[Category][]*PromptPoint) []Category {
	seen := make(map[Category]bool, len(categoryOrder))
	var order []Category
	for _, cat := range categoryOrder {
		if _, ok := groups[cat]; ok {
			order = append(order, cat)
			seen[cat] = true
		}
	}

	var rest []Category
	for cat := range groups {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(order, rest...)
}

// rankLess orders two points within a category group: verified desc,
// priority desc, success_count desc.
func rankLess(a, b *PromptPoint) bool {
	if a.Verified != b.Verified {
		return a.Verified
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.SuccessCount > b.SuccessCount
}
