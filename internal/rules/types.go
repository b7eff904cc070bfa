package rules

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/source"
)

var (
	ErrNotFound          = errors.New("checkpoint not found")
	ErrDuplicate         = errors.New("duplicate checkpoint id")
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

type DetectorKind string

const (
	// DetectRegex reports every match of Pattern.
	DetectRegex DetectorKind = "regex"
	// DetectAbsent reports once per file when Pattern never matches.
	DetectAbsent DetectorKind = "absent"
	// DetectHeuristic delegates to a Go function.
	DetectHeuristic DetectorKind = "heuristic"
	// DetectManual cannot be checked statically and always asks for review.
	DetectManual DetectorKind = "manual"
)

// Heuristic inspects a document and returns raw matches. CheckpointID and
// File are filled in by the evaluator when left empty.
type Heuristic func(doc *source.Document) []ir.Match

type Detector struct {
	Kind      DetectorKind
	Pattern   *regexp.Regexp
	Heuristic Heuristic
	// Reason explains a manual or absent finding in its evidence.
	Reason string
}

// Checkpoint is a single named rule in a review checklist.
type Checkpoint struct {
	ID              string
	Title           string
	Description     string
	Category        string
	AgentID         string
	DefaultSeverity ir.Severity
	// FileTypes holds extensions (".py") or base-name globs ("Dockerfile*").
	// Empty applies to every file.
	FileTypes      []string
	Recommendation string
	Reference      string
	Detector       Detector
	// Pack names the source that registered the checkpoint ("builtin" or a pack path).
	Pack string
}

func (c Checkpoint) AppliesTo(path string) bool {
	if len(c.FileTypes) == 0 {
		return true
	}
	base := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(path))
	for _, ft := range c.FileTypes {
		ft = strings.ToLower(strings.TrimSpace(ft))
		if ft == "" {
			continue
		}
		if strings.HasPrefix(ft, ".") && !strings.ContainsAny(ft, "*?[") {
			if ext == ft {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(ft, base); ok {
			return true
		}
	}
	return false
}

func (c Checkpoint) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(c.Recommendation) == "" {
		missing = append(missing, "recommendation")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w %q: missing %s", ErrInvalidCheckpoint, c.ID, strings.Join(missing, "/"))
	}
	if !c.DefaultSeverity.Valid() {
		return fmt.Errorf("%w %q: %w", ErrInvalidCheckpoint, c.ID, ir.ErrUnknownSeverity)
	}
	switch c.Detector.Kind {
	case DetectRegex, DetectAbsent:
		if c.Detector.Pattern == nil {
			return fmt.Errorf("%w %q: %s detector needs a pattern", ErrInvalidCheckpoint, c.ID, c.Detector.Kind)
		}
	case DetectHeuristic:
		if c.Detector.Heuristic == nil {
			return fmt.Errorf("%w %q: heuristic detector needs a function", ErrInvalidCheckpoint, c.ID)
		}
	case DetectManual:
	default:
		return fmt.Errorf("%w %q: unknown detector kind %q", ErrInvalidCheckpoint, c.ID, c.Detector.Kind)
	}
	return nil
}

func normID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }
