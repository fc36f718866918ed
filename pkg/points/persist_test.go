package points

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

func TestSaveLoad_RoundTripLearnedOnly(t *testing.T) {
	dir := t.TempDir()
	m := New()
	now := fixedNow(time.Now())
	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "point one"}, now)
	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightWarning, Content: "point two"}, now)

	require.NoError(t, m.Save(domain.Diagnosis, dir))

	m2 := New()
	require.NoError(t, m2.Load(domain.Diagnosis, dir))

	assert.Len(t, m2.Points(domain.Diagnosis), 2)
}

func TestLoad_IgnoresOriginalSourceRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagnosis_points.json")
	data, err := json.Marshal([]*PromptPoint{
		{ID: "orig-1", Content: "original content", Source: SourceOriginal, Active: true},
		{ID: "learned-1", Content: "learned content", Source: SourceLearned, Active: true},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m := New()
	require.NoError(t, m.Load(domain.Diagnosis, dir))

	pts := m.Points(domain.Diagnosis)
	require.Len(t, pts, 1)
	assert.Equal(t, "learned-1", pts[0].ID)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	m := New()
	assert.NoError(t, m.Load(domain.Diagnosis, dir))
	assert.Empty(t, m.Points(domain.Diagnosis))
}

func TestLoad_ResumesIDSequenceWithoutCollision(t *testing.T) {
	dir := t.TempDir()
	m := New()
	now := fixedNow(time.Now())
	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "a"}, now)
	m.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "b"}, now)
	require.NoError(t, m.Save(domain.Diagnosis, dir))

	m2 := New()
	require.NoError(t, m2.Load(domain.Diagnosis, dir))
	next := m2.AddLearnedInsight(domain.Diagnosis, Insight{Type: InsightGeneral, Content: "c"}, now)

	for _, p := range m2.Points(domain.Diagnosis) {
		assert.NotEqual(t, next.ID, p.ID)
	}
	assert.Len(t, m2.Points(domain.Diagnosis), 3)
}
