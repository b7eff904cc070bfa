package rules

import (
	"path/filepath"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/storage"
)

// ApplyWaivers filters out findings that match any active waiver.
// Returns (kept, waivedCount)
func ApplyWaivers(in []ir.Finding, waivers []storage.Waiver) ([]ir.Finding, int) {
	if len(waivers) == 0 || len(in) == 0 {
		return in, 0
	}
	var out []ir.Finding
	waived := 0
nextFinding:
	for _, f := range in {
		for _, w := range waivers {
			if !eqCI(f.CheckpointID, w.CheckpointID) {
				continue
			}
			if w.FileGlob != "" && !globMatch(w.FileGlob, f.File) {
				continue
			}
			if w.PatternSub != "" {
				ps := strings.ToUpper(w.PatternSub)
				if !strings.Contains(strings.ToUpper(f.Evidence), ps) &&
					!strings.Contains(strings.ToUpper(f.Title), ps) {
					continue
				}
			}
			// matched → waive it
			waived++
			continue nextFinding
		}
		out = append(out, f)
	}
	return out, waived
}

// globMatch tries the full slash path first, then the base name.
func globMatch(pattern, file string) bool {
	file = filepath.ToSlash(file)
	if ok, _ := filepath.Match(pattern, file); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, filepath.Base(file))
	return ok
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
