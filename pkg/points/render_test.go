package points

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRebuildPrompt_NoActivePointsReturnsBaseUnchanged(t *testing.T) {
	base := "You are a careful SRE agent."
	assert.Equal(t, base, RebuildPrompt(base, nil))
}

func TestRebuildPrompt_PreservesBaseBytesAndAppendsSection(t *testing.T) {
	base := "BASE PROMPT CONTENT\nline two"
	pts := []*PromptPoint{
		{ID: "1", Content: "use get_metrics for memory issues", Category: CategoryToolUsage, Priority: 6, Active: true, CreatedAt: time.Now()},
	}
	out := RebuildPrompt(base, pts)
	assert.True(t, strings.HasPrefix(out, base))
	assert.Contains(t, out, "Learned Insights (Additive — Original Content Preserved Above)")
	assert.Contains(t, out, "use get_metrics for memory issues")
	assert.Contains(t, out, "⚠️ UNVERIFIED (being tested)")
}

func TestRebuildPrompt_GroupOrderAndSortKey(t *testing.T) {
	pts := []*PromptPoint{
		{ID: "g1", Content: "general low", Category: CategoryGeneral, Priority: 3, Active: true},
		{ID: "w1", Content: "warn point", Category: CategoryWarning, Priority: 5, Active: true},
		{ID: "t1", Content: "tool point low prio", Category: CategoryToolUsage, Priority: 2, Active: true},
		{ID: "t2", Content: "tool point high prio verified", Category: CategoryToolUsage, Priority: 9, Verified: true, Active: true},
		{ID: "wf1", Content: "workflow point", Category: CategoryWorkflow, Priority: 4, Active: true},
	}
	out := RebuildPrompt("base", pts)

	idxTool := strings.Index(out, "### Tool_usage")
	idxWorkflow := strings.Index(out, "### Workflow")
	idxWarning := strings.Index(out, "### Warning")
	idxGeneral := strings.Index(out, "### General")
	if idxTool == -1 || idxWorkflow == -1 || idxWarning == -1 || idxGeneral == -1 {
		t.Fatalf("expected all four group headers present, got:\n%s", out)
	}
	assert.True(t, idxTool < idxWorkflow)
	assert.True(t, idxWorkflow < idxWarning)
	assert.True(t, idxWarning < idxGeneral)

	idxVerifiedTool := strings.Index(out, "tool point high prio verified")
	idxLowTool := strings.Index(out, "tool point low prio")
	assert.True(t, idxVerifiedTool < idxLowTool, "verified/higher-priority point must render first within its group")
}

func TestRebuildPrompt_IsPureFunction(t *testing.T) {
	pts := []*PromptPoint{
		{ID: "1", Content: "be careful", Category: CategoryGeneral, Priority: 6, Active: true},
	}
	out1 := RebuildPrompt("base", pts)
	out2 := RebuildPrompt("base", pts)
	assert.Equal(t, out1, out2)
}
