package points

import (
	"regexp"
	"sort"
	"strings"
)

// knownTools is the table of resolvable tool names consulted
// longest-match-first.
var knownTools = []string{
	"exec_read_only_kubectl_cmd",
	"exec_kubectl_cmd_safely",
	"get_metrics",
	"get_logs",
	"get_events",
	"submit_tool",
	"describe_resource",
	"list_resources",
}

var sortedKnownTools = sortedByLengthDesc(knownTools)

func sortedByLengthDesc(in []string) []string {
	out := append([]string(nil), in...)
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// wordPattern matches a free-standing snake_case-ish tool mention:
// word_word(_word)*, at least one underscore.
var wordPattern = regexp.MustCompile(`\b[a-zA-Z]+(?:_[a-zA-Z]+)+\b`)

var readOnlyKubectlVerbs = regexp.MustCompile(`(?i)\b(get|describe|logs|top|explain|version|config)\b`)

// resolveToolName implements the tool-name resolution cascade of
// : known-tools table longest-match-first, then a
// word_word(_word)* token, then free-text "kubectl" mapped to the
// read-only or unsafe exec tool depending on verb. Returns ("", false)
// if nothing resolves.
func resolveToolName(text string) (string, bool) {
	lower := strings.ToLower(text)

	for _, tool := range sortedKnownTools {
		if strings.Contains(lower, strings.ToLower(tool)) {
			return tool, true
		}
	}

	if m := wordPattern.FindString(text); m != "" {
		return m, true
	}

	if strings.Contains(lower, "kubectl") {
		if readOnlyKubectlVerbs.MatchString(lower) {
			return "exec_read_only_kubectl_cmd", true
		}
		return "exec_kubectl_cmd_safely", true
	}

	return "", false
}
