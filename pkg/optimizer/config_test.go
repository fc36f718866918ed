package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters/fake"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

func TestProposeConfig_MergesPreservingUnknownFields(t *testing.T) {
	llm := fake.NewLLM(`{"config": {"max_steps": 12}}`)
	o := New(llm)

	existing := map[string]any{"max_steps": float64(8), "temperature": 0.3}
	merged, ok, err := o.ProposeConfig(context.Background(), domain.Diagnosis, sampleTraces(), existing)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(12), merged["max_steps"])
	assert.Equal(t, 0.3, merged["temperature"], "fields the LLM didn't mention must be preserved")
}

func TestProposeConfig_ParseFailureKeepsExistingConfig(t *testing.T) {
	llm := fake.NewLLM("not json", "not json", "not json")
	o := New(llm)

	existing := map[string]any{"max_steps": float64(8)}
	merged, ok, err := o.ProposeConfig(context.Background(), domain.Diagnosis, sampleTraces(), existing)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, existing, merged)
}
