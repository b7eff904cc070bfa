package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
)

type Diff struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary DiffSummary   `json:"summary"`
	New     []DiffFinding `json:"new"`
	Removed []DiffFinding `json:"removed"`
	Changed []DiffChanged `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type DiffFinding struct {
	CheckpointID string      `json:"checkpoint_id"`
	File         string      `json:"file,omitempty"`
	Lines        string      `json:"lines,omitempty"`
	Severity     ir.Severity `json:"severity,omitempty"`
	Title        string      `json:"title,omitempty"`
}

type DiffChanged struct {
	Key     string      `json:"key"`
	Base    DiffFinding `json:"base"`
	Head    DiffFinding `json:"head"`
	Changed []string    `json:"fields_changed"`
}

// CompareRuns matches findings of two runs by checkpoint, file, lines and
// evidence, and reports what appeared, disappeared or changed.
func CompareRuns(base, head *ir.Run) Diff {
	bm := map[string]ir.Finding{}
	hm := map[string]ir.Finding{}
	for _, f := range base.Findings {
		bm[keyOf(f)] = f
	}
	for _, f := range head.Findings {
		hm[keyOf(f)] = f
	}

	var added, removed []DiffFinding
	var changed []DiffChanged

	for k, hf := range hm {
		bf, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hf))
			continue
		}
		var fields []string
		if bf.Severity != hf.Severity {
			fields = append(fields, "severity")
		}
		if strings.TrimSpace(bf.Title) != strings.TrimSpace(hf.Title) {
			fields = append(fields, "title")
		}
		if strings.Join(bf.MergedFrom, ",") != strings.Join(hf.MergedFrom, ",") {
			fields = append(fields, "merged_from")
		}
		if len(fields) > 0 {
			changed = append(changed, DiffChanged{Key: k, Base: asDiff(bf), Head: asDiff(hf), Changed: fields})
		}
	}
	for k, bf := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bf))
		}
	}

	sortDiff(added)
	sortDiff(removed)
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	return Diff{
		BaseID: base.ID,
		HeadID: head.ID,
		Summary: DiffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
}

func WriteDiffJSON(outDir string, base, head *ir.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	b, err := json.MarshalIndent(CompareRuns(base, head), "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func keyOf(f ir.Finding) string {
	sb := strings.Builder{}
	sb.WriteString(norm(f.CheckpointID))
	sb.WriteByte('|')
	sb.WriteString(f.File)
	sb.WriteByte('|')
	sb.WriteString(f.Lines.String())
	sb.WriteByte('|')
	sb.WriteString(strings.TrimSpace(f.Evidence))
	return sb.String()
}

func asDiff(f ir.Finding) DiffFinding {
	return DiffFinding{
		CheckpointID: f.CheckpointID,
		File:         f.File,
		Lines:        f.Lines.String(),
		Severity:     f.Severity,
		Title:        f.Title,
	}
}

func sortDiff(ds []DiffFinding) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.CheckpointID != b.CheckpointID {
			return a.CheckpointID < b.CheckpointID
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Lines < b.Lines
	})
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
