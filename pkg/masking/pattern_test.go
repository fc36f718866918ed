package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileBuiltinPatterns(t *testing.T) {
	compiled := compileBuiltinPatterns()

	assert.Equal(t, len(builtinPatterns), len(compiled),
		"all built-in patterns should compile")

	for name, cp := range compiled {
		assert.NotNil(t, cp.Regex, "pattern %s should have a compiled regex", name)
		assert.NotEmpty(t, cp.Replacement, "pattern %s should have a replacement", name)
	}
}

func TestCompileBuiltinPatterns_NamesPresent(t *testing.T) {
	compiled := compileBuiltinPatterns()

	expected := []string{
		"api_key", "password", "certificate", "certificate_authority_data",
		"token", "email", "ssh_key", "base64_secret", "base64_short",
		"private_key", "secret_key", "aws_access_key", "aws_secret_key",
		"github_token", "slack_token",
	}
	for _, name := range expected {
		_, ok := compiled[name]
		assert.True(t, ok, "expected builtin pattern %q to be compiled", name)
	}
	assert.Len(t, compiled, len(expected))
}
