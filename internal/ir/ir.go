package ir

import (
	"fmt"
	"time"
)

const Version = "1.0"

type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context  Context   `json:"context"`
	Files    []string  `json:"files,omitempty"`
	Findings []Finding `json:"findings,omitempty"`
	Summary  Summary   `json:"summary"`
}

type Context struct {
	Visibility          string   `json:"visibility,omitempty"`  // proprietary|open-source
	Environment         string   `json:"environment,omitempty"` // production|internal
	SeverityThreshold   Severity `json:"severity_threshold,omitempty"`
	DisabledCheckpoints []string `json:"disabled_checkpoints,omitempty"`
	WaivedCount         int      `json:"waived_count,omitempty"`
}

// Summary is the fixed five-row severity count table.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

func (s Summary) Count(sev Severity) int {
	switch sev {
	case Critical:
		return s.Critical
	case High:
		return s.High
	case Medium:
		return s.Medium
	case Low:
		return s.Low
	case Info:
		return s.Info
	}
	return 0
}

func (s Summary) Total() int { return s.Critical + s.High + s.Medium + s.Low + s.Info }

func Summarize(fs []Finding) Summary {
	var s Summary
	for _, f := range fs {
		switch f.Severity {
		case Critical:
			s.Critical++
		case High:
			s.High++
		case Medium:
			s.Medium++
		case Low:
			s.Low++
		case Info:
			s.Info++
		}
	}
	return s
}

// Blocking reports whether any finding is at or above gate.
func (r *Run) Blocking(gate Severity) bool {
	for _, f := range r.Findings {
		if f.Severity.AtLeast(gate) {
			return true
		}
	}
	return false
}

// LineRange is 1-based and inclusive. The zero value means file-level.
type LineRange struct {
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

func (r LineRange) IsZero() bool { return r.Start <= 0 }

func (r LineRange) normalized() LineRange {
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}

// Overlaps is true when both ranges are set and share at least one line,
// or when both are file-level.
func (r LineRange) Overlaps(o LineRange) bool {
	if r.IsZero() || o.IsZero() {
		return r.IsZero() && o.IsZero()
	}
	a, b := r.normalized(), o.normalized()
	return a.Start <= b.End && b.Start <= a.End
}

func (r LineRange) Union(o LineRange) LineRange {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	a, b := r.normalized(), o.normalized()
	out := a
	if b.Start < out.Start {
		out.Start = b.Start
	}
	if b.End > out.End {
		out.End = b.End
	}
	return out
}

func (r LineRange) String() string {
	if r.IsZero() {
		return ""
	}
	n := r.normalized()
	if n.End == n.Start {
		return fmt.Sprintf("%d", n.Start)
	}
	return fmt.Sprintf("%d-%d", n.Start, n.End)
}

// Match is a raw detector hit before classification.
type Match struct {
	CheckpointID string    `json:"checkpoint_id"`
	File         string    `json:"file"`
	Lines        LineRange `json:"lines"`
	Text         string    `json:"text,omitempty"`
	ManualReview bool      `json:"manual_review,omitempty"`
}

type Finding struct {
	ID             string    `json:"id"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	AgentID        string    `json:"agent_id,omitempty"`
	File           string    `json:"file,omitempty"`
	Lines          LineRange `json:"lines"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	Evidence       string    `json:"evidence,omitempty"`
	Recommendation string    `json:"recommendation"`
	Reference      string    `json:"reference,omitempty"`
	CheckpointID   string    `json:"checkpoint_id"`
	ManualReview   bool      `json:"manual_review,omitempty"`
	MergedFrom     []string  `json:"merged_from,omitempty"`
}
