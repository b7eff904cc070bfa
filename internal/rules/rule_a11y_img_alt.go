package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/source"
)

var (
	reImgTag  = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	reAltAttr = regexp.MustCompile(`(?i)\salt\s*=`)
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "A11Y-IMG-ALT",
		Title:           "Image without alt text",
		Description:     "An <img> element has no alt attribute, so screen readers cannot describe it.",
		Category:        "Accessibility",
		AgentID:         "accessibility-reviewer",
		DefaultSeverity: ir.Medium,
		FileTypes:       []string{".html", ".htm", ".jsx", ".tsx", ".vue"},
		Recommendation:  `Add a descriptive alt attribute, or alt="" for purely decorative images.`,
		Reference:       "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
		Detector: Detector{
			Kind:      DetectHeuristic,
			Heuristic: imgWithoutAlt,
		},
	})
}

func imgWithoutAlt(doc *source.Document) []ir.Match {
	var out []ir.Match
	for _, loc := range reImgTag.FindAllStringIndex(doc.Content, -1) {
		tag := doc.Content[loc[0]:loc[1]]
		if reAltAttr.MatchString(tag) {
			continue
		}
		out = append(out, ir.Match{
			Lines: ir.LineRange{Start: doc.LineAt(loc[0]), End: doc.LineAt(loc[1] - 1)},
			Text:  tag,
		})
	}
	return out
}
