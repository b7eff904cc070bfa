// Package severity maps a matched checkpoint to its final severity. The
// checkpoint's default is adjusted by rules keyed on where the code ships:
// the same hardcoded token matters more in an open-source repository than
// in an internal tool.
package severity

import (
	"fmt"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
	"github.com/codewithboateng/oversight/internal/shared"
)

const (
	Proprietary = "proprietary"
	OpenSource  = "open-source"

	Production = "production"
	Internal   = "internal"
)

// Context describes the project being reviewed.
type Context struct {
	Visibility  string
	Environment string
}

// ContextRule adjusts severity when its selectors match. Empty selectors
// match anything; "*" does too.
type ContextRule struct {
	Checkpoint  string
	Category    string
	Visibility  string
	Environment string

	// Set wins over Shift when both are given.
	Set   ir.Severity
	Shift int
}

func (r ContextRule) matches(cp rules.Checkpoint, ctx Context) bool {
	return sel(r.Checkpoint, cp.ID) &&
		sel(r.Category, cp.Category) &&
		sel(r.Visibility, ctx.Visibility) &&
		sel(r.Environment, ctx.Environment)
}

func sel(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || want == "*" || strings.EqualFold(want, strings.TrimSpace(got))
}

type Classifier struct {
	Rules []ContextRule
}

// DefaultRules mirrors the deployment-context table of the severity guide.
func DefaultRules() []ContextRule {
	return []ContextRule{
		{Category: "Secrets", Visibility: OpenSource, Set: ir.Critical},
		{Category: "Secrets", Environment: Internal, Shift: -1},
		{Category: "License", Visibility: Proprietary, Shift: +1},
		{Category: "License", Visibility: OpenSource, Shift: -1},
		{Category: "Debug", Environment: Production, Shift: +1},
		{Category: "Debug", Environment: Internal, Shift: -1},
		{Category: "Injection", Environment: Internal, Shift: -1},
		{Category: "Accessibility", Environment: Internal, Shift: -1},
	}
}

func New(rs []ContextRule) *Classifier {
	if len(rs) == 0 {
		rs = DefaultRules()
	}
	return &Classifier{Rules: rs}
}

// FromConfig converts the YAML rule table; an empty table yields the defaults.
func FromConfig(cfg []shared.ContextRuleConfig) (*Classifier, error) {
	var rs []ContextRule
	for i, rc := range cfg {
		r := ContextRule{
			Checkpoint:  rc.Checkpoint,
			Category:    rc.Category,
			Visibility:  rc.Visibility,
			Environment: rc.Environment,
			Shift:       rc.Shift,
		}
		if rc.Set != "" {
			sev, err := ir.ParseSeverity(rc.Set)
			if err != nil {
				return nil, fmt.Errorf("context rule %d: %w", i, err)
			}
			r.Set = sev
		}
		if r.Set == "" && r.Shift == 0 {
			return nil, fmt.Errorf("context rule %d: needs set or shift", i)
		}
		rs = append(rs, r)
	}
	return New(rs), nil
}

// Classify returns the severity for m. Positive observations (INFO) and
// manual-review matches keep the checkpoint default; violations are never
// moved below LOW so they stay subject to deduplication.
func (c *Classifier) Classify(m ir.Match, cp rules.Checkpoint, ctx Context) ir.Severity {
	sev := cp.DefaultSeverity
	if sev == ir.Info || m.ManualReview {
		return sev
	}
	for _, r := range c.Rules {
		if !r.matches(cp, ctx) {
			continue
		}
		if r.Set.Valid() {
			sev = r.Set
		} else {
			sev = sev.Shift(r.Shift, ir.Low)
		}
	}
	if sev == ir.Info {
		sev = ir.Low
	}
	return sev
}
