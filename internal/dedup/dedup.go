// Package dedup collapses overlapping findings and puts the result in
// report order.
//
// Two findings merge when they are in the same file, belong to the same
// category and their line ranges overlap. The merged finding takes the
// highest severity; the content of the more severe input supersedes the
// other, and every contributing agent is listed in MergedFrom. INFO
// findings never merge. Merging is applied until no mergeable pair is
// left, so running Deduplicate on its own output changes nothing.
package dedup

import (
	"sort"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
)

type groupKey struct {
	file     string
	category string
}

type indexed struct {
	ir.Finding
	idx int
}

func Deduplicate(in []ir.Finding) []ir.Finding {
	out := make([]ir.Finding, 0, len(in))
	groups := map[groupKey][]indexed{}
	var order []groupKey

	for i, f := range in {
		if f.Severity == ir.Info || f.File == "" {
			out = append(out, f)
			continue
		}
		k := groupKey{file: f.File, category: strings.ToLower(strings.TrimSpace(f.Category))}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], indexed{Finding: f, idx: i})
	}

	for _, k := range order {
		out = append(out, mergeGroup(groups[k])...)
	}
	Sort(out)
	return out
}

// mergeGroup sweeps a single file+category group in line order.
func mergeGroup(g []indexed) []ir.Finding {
	sort.SliceStable(g, func(i, j int) bool {
		a, b := g[i].Lines, g[j].Lines
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return g[i].idx < g[j].idx
	})

	var out []ir.Finding
	cur := g[0]
	for _, next := range g[1:] {
		if cur.Lines.Overlaps(next.Lines) {
			cur = merge(cur, next)
			continue
		}
		out = append(out, cur.Finding)
		cur = next
	}
	return append(out, cur.Finding)
}

// merge keeps the more severe finding's content; ties go to the earlier input.
func merge(a, b indexed) indexed {
	primary, other := a, b
	if b.Severity.Rank() > a.Severity.Rank() ||
		(b.Severity == a.Severity && b.idx < a.idx) {
		primary, other = b, a
	}
	m := primary
	m.Severity = ir.MaxSeverity(a.Severity, b.Severity)
	m.Lines = a.Lines.Union(b.Lines)
	m.MergedFrom = unionAgents(agents(primary.Finding), agents(other.Finding))
	return m
}

func agents(f ir.Finding) []string {
	if len(f.MergedFrom) > 0 {
		return f.MergedFrom
	}
	if f.AgentID == "" {
		return nil
	}
	return []string{f.AgentID}
}

func unionAgents(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Sort orders findings by severity (desc), file, start line, then
// category, title and id so the order is total.
func Sort(fs []ir.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Lines.Start != b.Lines.Start {
			return a.Lines.Start < b.Lines.Start
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}
