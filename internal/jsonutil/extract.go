// Package jsonutil provides small JSON-handling helpers shared by
// components that parse LLM output, which frequently wraps a JSON
// payload in prose or markdown fences.
package jsonutil

import "encoding/json"

// ExtractJSON scans text for the first balanced top-level JSON object or
// array and returns it unparsed, ported from the bracket-matching
// extraction in original_source/meta_agent/point_based_prompts.py (the
// Python implementation this spec was distilled from leans on the same
// trick to tolerate LLMs that answer in prose around a JSON blob).
//
// It tracks string/escape state so that braces inside string literals
// don't confuse the bracket count, and returns the first complete
// balanced span found, from either a '{' or a '[', whichever appears
// first.
func ExtractJSON(text string) (json.RawMessage, bool) {
	start := -1
	var open, close byte
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if start == -1 {
			if c == '{' {
				start, open, close = i, '{', '}'
				depth = 1
			} else if c == '[' {
				start, open, close = i, '[', ']'
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return json.RawMessage(candidate), true
				}
				// Not valid JSON despite balanced brackets (e.g. a stray
				// '{' inside prose before the real payload); keep
				// scanning for another candidate start.
				start = -1
			}
		}
	}
	return nil, false
}
