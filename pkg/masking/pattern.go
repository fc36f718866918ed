package masking

import (
	"log/slog"
	"regexp"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// BuiltinPattern describes a masking regex before compilation.
type BuiltinPattern struct {
	Pattern     string
	Replacement string
	Description string
}

// builtinPatterns are the default sensitive-data patterns applied to every
// tool-call response regardless of which tool produced it, with no
// registry or pattern-group indirection: every trace gets the full set
// applied unconditionally.
var builtinPatterns = map[string]BuiltinPattern{
	"api_key": {
		Pattern:     `(?i)(?:api[_-]?key|apikey|key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{20,})["']?`,
		Replacement: `"api_key": "[MASKED_API_KEY]"`,
		Description: "API keys",
	},
	"password": {
		Pattern:     `(?i)(?:password|pwd|pass)["']?\s*[:=]\s*["']?([^"'\s\n]{6,})["']?`,
		Replacement: `"password": "[MASKED_PASSWORD]"`,
		Description: "Passwords",
	},
	"certificate": {
		Pattern:     `(?s)-----BEGIN [A-Z ]+-----.*?-----END [A-Z ]+-----`,
		Replacement: `[MASKED_CERTIFICATE]`,
		Description: "SSL/TLS certificates",
	},
	"certificate_authority_data": {
		Pattern:     `(?i)certificate-authority-data:\s*([A-Za-z0-9+/]{20,}={0,2})`,
		Replacement: `certificate-authority-data: [MASKED_CA_CERTIFICATE]`,
		Description: "K8s CA data",
	},
	"token": {
		Pattern:     `(?i)(?:token|bearer|jwt)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		Replacement: `"token": "[MASKED_TOKEN]"`,
		Description: "Access tokens",
	},
	"email": {
		Pattern:     `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
		Replacement: `[MASKED_EMAIL]`,
		Description: "Email addresses",
	},
	"ssh_key": {
		Pattern:     `ssh-(?:rsa|dss|ed25519|ecdsa)\s+[A-Za-z0-9+/=]+`,
		Replacement: `[MASKED_SSH_KEY]`,
		Description: "SSH public keys",
	},
	"base64_secret": {
		Pattern:     `\b([A-Za-z0-9+/]{20,}={0,2})\b`,
		Replacement: `[MASKED_BASE64_VALUE]`,
		Description: "Base64 values (20+ chars)",
	},
	"base64_short": {
		Pattern:     `:\s+([A-Za-z0-9+/]{4,19}={0,2})(?:\s|$)`,
		Replacement: `: [MASKED_SHORT_BASE64]`,
		Description: "Short base64 values",
	},
	"private_key": {
		Pattern:     `(?i)(?:private[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		Replacement: `"private_key": "[MASKED_PRIVATE_KEY]"`,
		Description: "Private keys",
	},
	"secret_key": {
		Pattern:     `(?i)(?:secret[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		Replacement: `"secret_key": "[MASKED_SECRET_KEY]"`,
		Description: "Secret keys",
	},
	"aws_access_key": {
		Pattern:     `(?i)(?:aws[_-]?access[_-]?key[_-]?id)["']?\s*[:=]\s*["']?(AKIA[A-Z0-9]{16})["']?`,
		Replacement: `"aws_access_key_id": "[MASKED_AWS_KEY]"`,
		Description: "AWS access keys",
	},
	"aws_secret_key": {
		Pattern:     `(?i)(?:aws[_-]?secret[_-]?access[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`,
		Replacement: `"aws_secret_access_key": "[MASKED_AWS_SECRET]"`,
		Description: "AWS secret keys",
	},
	"github_token": {
		Pattern:     `(?i)(?:github[_-]?token|gh[ps]_[A-Za-z0-9_]{36,255})`,
		Replacement: `[MASKED_GITHUB_TOKEN]`,
		Description: "GitHub tokens",
	},
	"slack_token": {
		Pattern:     `(?i)xox[baprs]-[A-Za-z0-9-]{10,72}`,
		Replacement: `[MASKED_SLACK_TOKEN]`,
		Description: "Slack tokens",
	},
}

// compileBuiltinPatterns compiles the built-in regex patterns. Invalid
// patterns are logged and skipped rather than failing service construction.
func compileBuiltinPatterns() map[string]*CompiledPattern {
	compiled := make(map[string]*CompiledPattern, len(builtinPatterns))
	for name, p := range builtinPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			slog.Error("Failed to compile built-in masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		compiled[name] = &CompiledPattern{
			Name:        name,
			Regex:       re,
			Replacement: p.Replacement,
			Description: p.Description,
		}
	}
	return compiled
}
