package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/source"
)

var manifestFiles = []string{"package.json", "pyproject.toml", "cargo.toml", "setup.cfg", "composer.json", "*.gemspec"}

var (
	reLicenseField = regexp.MustCompile(`(?im)^\s*(?:"license"\s*:|license\s*=|\w+\.license\s*=)\s*(.*)$`)
	reLicenseValue = regexp.MustCompile(`(?i)unknown|unlicensed|see license in|proprietary|custom|^\s*["']?\s*["']?\s*,?\s*$`)
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "LIC-COPYLEFT-DEPENDENCY",
		Title:           "Copyleft licence declared",
		Description:     "A manifest declares a GPL-family licence, which imposes source-disclosure obligations on distribution.",
		Category:        "License",
		AgentID:         "license-reviewer",
		DefaultSeverity: ir.Medium,
		FileTypes:       manifestFiles,
		Recommendation:  "Confirm the licence is compatible with how the project is distributed, or replace the component.",
		Reference:       "https://www.gnu.org/licenses/gpl-faq.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`(?i)["'=:\s](A?GPL|LGPL|SSPL|EUPL)(-\d(\.\d)?)?(-only|-or-later|\+)?["'\s,]`),
		},
	})

	registerBuiltin(Checkpoint{
		ID:              "LIC-LICENSE-UNDETECTED",
		Title:           "Licence cannot be determined",
		Description:     "The manifest has no machine-readable licence, or declares one that cannot be classified automatically.",
		Category:        "License",
		AgentID:         "license-reviewer",
		DefaultSeverity: ir.Medium,
		FileTypes:       manifestFiles,
		Recommendation:  "Declare an SPDX licence identifier, or record the result of a manual licence review.",
		Reference:       "https://spdx.org/licenses/",
		Detector: Detector{
			Kind:      DetectHeuristic,
			Heuristic: undetectedLicense,
			Reason:    "no SPDX licence identifier could be read from the manifest",
		},
	})

	registerBuiltin(Checkpoint{
		ID:              "LIC-TOOL-CONFIG",
		Title:           "Licence tooling configuration",
		Description:     "Licence scanner configuration (allow-lists, ignored packages) changes what is reported and cannot be verified statically.",
		Category:        "License",
		AgentID:         "license-reviewer",
		DefaultSeverity: ir.Low,
		FileTypes:       []string{".licensee.yml", ".fossa.yml", "license_finder*.yml", ".licenserc*", "deny.toml"},
		Recommendation:  "Have a maintainer confirm each allow-list entry and ignored package against the licence policy.",
		Detector: Detector{
			Kind:   DetectManual,
			Reason: "licence tool settings require human sign-off",
		},
	})
}

func undetectedLicense(doc *source.Document) []ir.Match {
	loc := reLicenseField.FindStringSubmatchIndex(doc.Content)
	if loc == nil {
		return []ir.Match{{ManualReview: true, Text: "no licence field"}}
	}
	value := doc.Content[loc[2]:loc[3]]
	if !reLicenseValue.MatchString(value) {
		return nil
	}
	line := doc.LineAt(loc[0])
	return []ir.Match{{
		Lines:        ir.LineRange{Start: line, End: line},
		Text:         doc.Line(line),
		ManualReview: true,
	}}
}
