// Package evaluator applies checkpoint detectors to documents and emits
// raw matches. Evaluation is read-only and deterministic, so a sequence
// can be ranged over any number of times.
package evaluator

import (
	"iter"
	"regexp"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
	"github.com/codewithboateng/oversight/internal/source"
)

const DefaultMaxMatches = 50

type Options struct {
	// MaxMatchesPerCheckpoint caps matches per checkpoint per file.
	MaxMatchesPerCheckpoint int
	// MaxFileBytes skips larger files; 0 means no limit.
	MaxFileBytes int64
	// Workers bounds parallel file evaluation; 0 means NumCPU.
	Workers int
}

func (o Options) maxMatches() int {
	if o.MaxMatchesPerCheckpoint <= 0 {
		return DefaultMaxMatches
	}
	return o.MaxMatchesPerCheckpoint
}

// Evaluate returns the matches of every enabled checkpoint applicable to
// doc, in checkpoint id order then position order.
func Evaluate(doc *source.Document, reg *rules.Registry, opts Options) iter.Seq[ir.Match] {
	return func(yield func(ir.Match) bool) {
		sup := parseSuppressions(doc)
		limit := opts.maxMatches()
		for _, cp := range reg.ForFile(doc.Path) {
			n := 0
			for m := range detect(doc, cp) {
				if m.CheckpointID == "" {
					m.CheckpointID = cp.ID
				}
				if m.File == "" {
					m.File = doc.Path
				}
				if sup.covers(m) {
					continue
				}
				if !yield(m) {
					return
				}
				if n++; n >= limit {
					break
				}
			}
		}
	}
}

func detect(doc *source.Document, cp rules.Checkpoint) iter.Seq[ir.Match] {
	return func(yield func(ir.Match) bool) {
		switch cp.Detector.Kind {
		case rules.DetectRegex:
			for _, loc := range cp.Detector.Pattern.FindAllStringIndex(doc.Content, -1) {
				if !yield(regexMatch(doc, loc)) {
					return
				}
			}
		case rules.DetectAbsent:
			if !cp.Detector.Pattern.MatchString(doc.Content) {
				yield(ir.Match{})
			}
		case rules.DetectHeuristic:
			for _, m := range cp.Detector.Heuristic(doc) {
				if !yield(m) {
					return
				}
			}
		case rules.DetectManual:
			yield(ir.Match{ManualReview: true})
		}
	}
}

// regexMatch widens a byte span to the whole source lines it touches.
func regexMatch(doc *source.Document, loc []int) ir.Match {
	end := loc[1] - 1
	if end < loc[0] {
		end = loc[0]
	}
	lr := ir.LineRange{Start: doc.LineAt(loc[0]), End: doc.LineAt(end)}
	return ir.Match{
		Lines: lr,
		Text:  doc.Lines(lr.Start, lr.End),
	}
}

const ignoreMarker = "oversight:ignore"

var reIgnoreIDs = regexp.MustCompile(`^[ \t]*([A-Z0-9][A-Z0-9_-]*(?:[ \t]*,[ \t]*[A-Z0-9][A-Z0-9_-]*)*)`)

// suppressions maps a line number to the checkpoint ids ignored there;
// "*" ignores everything.
type suppressions map[int]map[string]bool

func parseSuppressions(doc *source.Document) suppressions {
	if !strings.Contains(doc.Content, ignoreMarker) {
		return nil
	}
	sup := suppressions{}
	for n := 1; n <= doc.LineCount(); n++ {
		line := doc.Line(n)
		i := strings.Index(line, ignoreMarker)
		if i < 0 {
			continue
		}
		ids := map[string]bool{}
		if m := reIgnoreIDs.FindStringSubmatch(line[i+len(ignoreMarker):]); m != nil {
			for _, id := range strings.Split(m[1], ",") {
				ids[strings.TrimSpace(id)] = true
			}
		} else {
			ids["*"] = true
		}
		sup[n] = ids
	}
	return sup
}

// covers reports whether a marker on the match's first line, or the line
// above it, ignores the match. File-level matches look at line 1.
func (s suppressions) covers(m ir.Match) bool {
	if len(s) == 0 {
		return false
	}
	start := m.Lines.Start
	if start <= 0 {
		start = 1
	}
	for _, n := range []int{start, start - 1} {
		ids, ok := s[n]
		if !ok {
			continue
		}
		if ids["*"] || ids[strings.ToUpper(m.CheckpointID)] {
			return true
		}
	}
	return false
}
