package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "DBG-DEBUG-OUTPUT",
		Title:           "Debug output left in code",
		Description:     "Console printing or an interactive debugger hook is present in non-test code.",
		Category:        "Debug",
		AgentID:         "quality-reviewer",
		DefaultSeverity: ir.Low,
		FileTypes:       []string{".js", ".jsx", ".ts", ".tsx", ".py", ".rb", ".php"},
		Recommendation:  "Remove the statement or route it through the project's logger at debug level.",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`\bconsole\.(log|debug|trace)\(|\bpdb\.set_trace\(|\bbreakpoint\(\)|\bdebugger;|\bbinding\.pry\b|\bvar_dump\(`),
		},
	})
}
