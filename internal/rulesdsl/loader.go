// Package rulesdsl loads checkpoint packs written in YAML.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
)

type dslPack struct {
	Checkpoints []dslCheckpoint `yaml:"checkpoints"`
}

type dslCheckpoint struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Category       string   `yaml:"category"`
	Agent          string   `yaml:"agent"`
	Severity       string   `yaml:"severity"` // CRITICAL|HIGH|MEDIUM|LOW|INFO
	FileTypes      []string `yaml:"file_types"`
	Detector       string   `yaml:"detector"` // regex (default)|absent|manual
	Pattern        string   `yaml:"pattern"`
	IgnoreCase     bool     `yaml:"ignore_case"`
	Reason         string   `yaml:"reason"`
	Description    string   `yaml:"description"`
	Recommendation string   `yaml:"recommendation"`
	Reference      string   `yaml:"reference"`
}

// Parse compiles a pack without registering it.
func Parse(b []byte) ([]rules.Checkpoint, error) {
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]rules.Checkpoint, 0, len(pack.Checkpoints))
	for _, d := range pack.Checkpoints {
		cp, err := compile(d)
		if err != nil {
			return nil, fmt.Errorf("compile checkpoint %q: %w", d.ID, err)
		}
		out = append(out, cp)
	}
	return out, nil
}

// LoadAndRegister reads the pack at path and swaps it into reg under the
// pack name path. It returns the number of checkpoints loaded.
func LoadAndRegister(path string, reg *rules.Registry) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read checkpoint pack: %w", err)
	}
	cps, err := Parse(b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := reg.Replace(path, cps); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return len(cps), nil
}

func compile(d dslCheckpoint) (rules.Checkpoint, error) {
	if d.ID == "" || d.Severity == "" || d.Title == "" || d.Recommendation == "" {
		return rules.Checkpoint{}, fmt.Errorf("missing required fields (id/title/severity/recommendation)")
	}
	sev, err := ir.ParseSeverity(d.Severity)
	if err != nil {
		return rules.Checkpoint{}, err
	}
	cp := rules.Checkpoint{
		ID:              strings.TrimSpace(d.ID),
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		AgentID:         d.Agent,
		DefaultSeverity: sev,
		FileTypes:       d.FileTypes,
		Recommendation:  d.Recommendation,
		Reference:       d.Reference,
		Detector:        rules.Detector{Reason: d.Reason},
	}
	switch kind := rules.DetectorKind(strings.ToLower(strings.TrimSpace(d.Detector))); kind {
	case "", rules.DetectRegex, rules.DetectAbsent:
		if kind == "" {
			kind = rules.DetectRegex
		}
		if d.Pattern == "" {
			return rules.Checkpoint{}, fmt.Errorf("%s detector needs a pattern", kind)
		}
		expr := d.Pattern
		if d.IgnoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return rules.Checkpoint{}, fmt.Errorf("pattern: %w", err)
		}
		cp.Detector.Kind = kind
		cp.Detector.Pattern = re
	case rules.DetectManual:
		cp.Detector.Kind = kind
	default:
		return rules.Checkpoint{}, fmt.Errorf("unsupported detector %q", d.Detector)
	}
	return cp, cp.Validate()
}
