package dedup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/oversight/internal/ir"
)

func finding(id string, sev ir.Severity, agent, file string, start, end int, category string) ir.Finding {
	return ir.Finding{
		ID:             id,
		Severity:       sev,
		Title:          "Title " + id,
		AgentID:        agent,
		File:           file,
		Lines:          ir.LineRange{Start: start, End: end},
		Category:       category,
		Evidence:       "evidence " + id,
		Recommendation: "Recommendation " + id,
	}
}

func TestMergeOverlappingSameCategory(t *testing.T) {
	in := []ir.Finding{
		finding("q", ir.Medium, "quality-reviewer", "app.py", 12, 14, "Injection"),
		finding("s", ir.High, "security-reviewer", "app.py", 10, 15, "injection"),
	}
	out := Deduplicate(in)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, ir.High, got.Severity)
	assert.Equal(t, ir.LineRange{Start: 10, End: 15}, got.Lines)
	assert.Equal(t, "Title s", got.Title)
	assert.Equal(t, "evidence s", got.Evidence)
	assert.Equal(t, "Recommendation s", got.Recommendation)
	assert.Equal(t, []string{"quality-reviewer", "security-reviewer"}, got.MergedFrom)
}

func TestKeepDistinct(t *testing.T) {
	cases := map[string][]ir.Finding{
		"different category": {
			finding("a", ir.High, "x", "app.py", 10, 15, "Injection"),
			finding("b", ir.High, "y", "app.py", 10, 15, "Secrets"),
		},
		"non-overlapping lines": {
			finding("a", ir.High, "x", "app.py", 10, 15, "Injection"),
			finding("b", ir.High, "y", "app.py", 16, 20, "Injection"),
		},
		"different file": {
			finding("a", ir.High, "x", "app.py", 10, 15, "Injection"),
			finding("b", ir.High, "y", "db.py", 10, 15, "Injection"),
		},
		"info never merges": {
			finding("a", ir.Info, "x", "app.py", 10, 15, "Injection"),
			finding("b", ir.Info, "y", "app.py", 10, 15, "Injection"),
		},
		"file-level and ranged": {
			finding("a", ir.Medium, "x", "package.json", 0, 0, "License"),
			finding("b", ir.Medium, "y", "package.json", 3, 3, "License"),
		},
		"no file": {
			finding("a", ir.Medium, "x", "", 0, 0, "License"),
			finding("b", ir.Medium, "y", "", 0, 0, "License"),
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out := Deduplicate(in)
			require.Len(t, out, 2)
			for _, f := range out {
				assert.Empty(t, f.MergedFrom)
			}
		})
	}
}

func TestMergeIsTransitive(t *testing.T) {
	in := []ir.Finding{
		finding("c", ir.Low, "c", "a.go", 5, 7, "Debug"),
		finding("a", ir.Medium, "a", "a.go", 1, 3, "Debug"),
		finding("b", ir.Low, "b", "a.go", 3, 5, "Debug"),
	}
	out := Deduplicate(in)
	require.Len(t, out, 1)
	assert.Equal(t, ir.Medium, out[0].Severity)
	assert.Equal(t, ir.LineRange{Start: 1, End: 7}, out[0].Lines)
	assert.Equal(t, "Title a", out[0].Title)
	assert.Equal(t, []string{"a", "b", "c"}, out[0].MergedFrom)
}

func TestMergeFileLevel(t *testing.T) {
	in := []ir.Finding{
		finding("a", ir.Medium, "license-reviewer", "package.json", 0, 0, "License"),
		finding("b", ir.Medium, "security-reviewer", "package.json", 0, 0, "License"),
	}
	out := Deduplicate(in)
	require.Len(t, out, 1)
	assert.True(t, out[0].Lines.IsZero())
	assert.Equal(t, []string{"license-reviewer", "security-reviewer"}, out[0].MergedFrom)
}

func TestMergeTieKeepsEarlier(t *testing.T) {
	in := []ir.Finding{
		finding("late-start", ir.High, "x", "app.py", 12, 13, "Injection"),
		finding("early-start", ir.High, "y", "app.py", 10, 12, "Injection"),
	}
	out := Deduplicate(in)
	require.Len(t, out, 1)
	assert.Equal(t, "Title late-start", out[0].Title)
	assert.Equal(t, ir.LineRange{Start: 10, End: 13}, out[0].Lines)
}

func TestMergeUnionsPriorMergedFrom(t *testing.T) {
	a := finding("a", ir.High, "security-reviewer", "app.py", 1, 2, "Injection")
	a.MergedFrom = []string{"quality-reviewer", "security-reviewer"}
	b := finding("b", ir.Low, "perf-reviewer", "app.py", 2, 4, "Injection")

	out := Deduplicate([]ir.Finding{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"perf-reviewer", "quality-reviewer", "security-reviewer"}, out[0].MergedFrom)
}

func TestDeduplicateIdempotentAndOrdered(t *testing.T) {
	in := []ir.Finding{
		finding("1", ir.Low, "a", "z.py", 1, 1, "Debug"),
		finding("2", ir.Critical, "b", "b.py", 40, 41, "Secrets"),
		finding("3", ir.Medium, "c", "a.py", 9, 12, "Injection"),
		finding("4", ir.High, "d", "a.py", 11, 11, "Injection"),
		finding("5", ir.Info, "e", "a.py", 1, 1, "Injection"),
		finding("6", ir.High, "f", "a.py", 2, 3, "Secrets"),
		finding("7", ir.Medium, "g", "a.py", 30, 30, "Accessibility"),
		finding("8", ir.Low, "h", "z.py", 1, 2, "Debug"),
	}
	once := Deduplicate(in)
	twice := Deduplicate(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("not idempotent (-once +twice):\n%s", diff)
	}

	var ids []string
	for _, f := range once {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"2", "6", "4", "7", "1", "5"}, ids)

	for i := 1; i < len(once); i++ {
		assert.GreaterOrEqual(t, once[i-1].Severity.Rank(), once[i].Severity.Rank())
	}
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
