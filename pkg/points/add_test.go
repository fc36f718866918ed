package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

func fixedNow(t time.Time) nowFunc {
	return func() time.Time { return t }
}

func TestAddLearnedInsight_CreatesPointWithDerivedCategory(t *testing.T) {
	m := New()
	now := fixedNow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	p := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightRecommendation, Content: "use get_metrics"}, now)

	assert.Equal(t, CategoryToolUsage, p.Category)
	assert.Equal(t, SourceLearned, p.Source)
	assert.Equal(t, defaultPriority, p.Priority)
	assert.True(t, p.Active)
	assert.False(t, p.Verified)
}

func TestAddLearnedInsight_DedupesExactContent(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())

	first := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightWarning, Content: "  never delete namespaces  "}, now)
	second := m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightWarning, Content: "never delete namespaces"}, now)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, m.Points(domain.Diagnosis), 1)
}

func TestAddLearnedInsight_PerKindIsolation(t *testing.T) {
	m := New()
	now := fixedNow(time.Now())

	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "a"}, now)
	m.AddLearnedInsight(domain.Localization, Insight{Type: InsightGeneral, Content: "b"}, now)

	assert.Len(t, m.Points(domain.Diagnosis), 1)
	assert.Len(t, m.Points(domain.Localization), 1)
	assert.Empty(t, m.Points(domain.Mitigation))
}
