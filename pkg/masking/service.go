package masking

import (
	"log/slog"
)

// Service applies data masking to tool-call output recorded into traces.
// Created once per Orchestrator run (thread-safe, stateless aside from
// compiled patterns).
type Service struct {
	patterns    map[string]*CompiledPattern
	codeMaskers map[string]Masker
	enabled     bool
}

// NewService creates a masking service with the built-in compiled patterns
// and registered code-based maskers. Disabled services pass content through
// unchanged, so interceptor wiring can stay unconditional.
func NewService(enabled bool) *Service {
	s := &Service{
		patterns:    compileBuiltinPatterns(),
		codeMaskers: make(map[string]Masker),
		enabled:     enabled,
	}
	s.register(&KubernetesSecretMasker{})

	slog.Info("Masking service initialized",
		"enabled", enabled,
		"compiled_patterns", len(s.patterns),
		"code_maskers", len(s.codeMaskers))

	return s
}

func (s *Service) register(m Masker) {
	s.codeMaskers[m.Name()] = m
}

// MaskToolResult applies code-based maskers then regex patterns to tool
// output. Returns the original content unchanged on failure (fail-open):
// a trace with unmasked data is strictly better than one silently dropped.
func (s *Service) MaskToolResult(content string) string {
	if !s.enabled || content == "" {
		return content
	}

	masked := content
	for _, m := range s.codeMaskers {
		if m.AppliesTo(masked) {
			masked = m.Mask(masked)
		}
	}
	for _, p := range s.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
