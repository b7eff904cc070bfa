// Package assembler turns classified matches into findings that conform
// to the finding schema.
package assembler

import (
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
)

var (
	ErrMissingTitle          = errors.New("finding has no title")
	ErrMissingRecommendation = errors.New("finding has no recommendation")
	ErrMissingEvidence       = errors.New("CRITICAL and HIGH findings require evidence")
)

const (
	DefaultMaxEvidenceLines = 12
	manualPrefix            = "Manual review: "
)

// ClassifiedMatch is a raw match with its final severity.
type ClassifiedMatch struct {
	Match    ir.Match
	Severity ir.Severity
}

type Assembler struct {
	// MaxEvidenceLines truncates long excerpts; 0 uses the default.
	MaxEvidenceLines int
	// DefaultAgent is used when a checkpoint names no agent.
	DefaultAgent string
}

// Assemble builds and validates a finding.
func (a Assembler) Assemble(cm ClassifiedMatch, cp rules.Checkpoint) (ir.Finding, error) {
	m := cm.Match
	f := ir.Finding{
		Severity:       cm.Severity,
		Title:          strings.TrimSpace(cp.Title),
		AgentID:        cp.AgentID,
		File:           m.File,
		Lines:          m.Lines,
		Category:       cp.Category,
		Description:    cp.Description,
		Recommendation: strings.TrimSpace(cp.Recommendation),
		Reference:      cp.Reference,
		CheckpointID:   cp.ID,
		ManualReview:   m.ManualReview,
	}
	if f.AgentID == "" {
		f.AgentID = a.DefaultAgent
	}
	f.Evidence = a.evidence(m, cp)
	if f.ManualReview && f.Title != "" {
		f.Title = manualPrefix + f.Title
	}
	if err := Validate(f); err != nil {
		return ir.Finding{}, fmt.Errorf("%s at %s: %w", cp.ID, location(f), err)
	}
	f.ID = makeID(f)
	return f, nil
}

func (a Assembler) evidence(m ir.Match, cp rules.Checkpoint) string {
	text := strings.Trim(m.Text, "\r\n")
	if strings.EqualFold(cp.Category, "Secrets") {
		text = Redact(text)
	}
	if text == "" {
		switch {
		case m.ManualReview && cp.Detector.Reason != "":
			return "Not statically verifiable: " + cp.Detector.Reason
		case m.ManualReview:
			return "Not statically verifiable"
		case cp.Detector.Kind == rules.DetectAbsent && cp.Detector.Reason != "":
			return "Required content not found: " + cp.Detector.Reason
		case cp.Detector.Kind == rules.DetectAbsent:
			return fmt.Sprintf("No match for /%s/", cp.Detector.Pattern)
		}
		return ""
	}
	return truncateLines(text, a.maxLines())
}

func (a Assembler) maxLines() int {
	if a.MaxEvidenceLines <= 0 {
		return DefaultMaxEvidenceLines
	}
	return a.MaxEvidenceLines
}

func truncateLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}

// Validate checks the schema invariants every finding must satisfy.
func Validate(f ir.Finding) error {
	if !f.Severity.Valid() {
		return fmt.Errorf("%w: %q", ir.ErrUnknownSeverity, f.Severity)
	}
	if strings.TrimSpace(f.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(f.Recommendation) == "" {
		return ErrMissingRecommendation
	}
	if f.Severity.AtLeast(ir.High) && strings.TrimSpace(f.Evidence) == "" {
		return ErrMissingEvidence
	}
	return nil
}

func location(f ir.Finding) string {
	if f.File == "" {
		return "(no file)"
	}
	if f.Lines.IsZero() {
		return f.File
	}
	return f.File + ":" + f.Lines.String()
}

func makeID(f ir.Finding) string {
	data := fmt.Sprintf("%s|%s|%s|%s", f.CheckpointID, f.File, f.Lines, f.Evidence)
	sum := crc32.ChecksumIEEE([]byte(data))
	return fmt.Sprintf("%s-%08x", f.CheckpointID, sum)
}
