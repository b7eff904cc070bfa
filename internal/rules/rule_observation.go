package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
)

// Positive observations are reported at INFO.
func init() {
	registerBuiltin(Checkpoint{
		ID:              "OBS-PARAMETERIZED-QUERY",
		Title:           "Parameterized query in use",
		Description:     "The query binds its values through placeholders rather than string building.",
		Category:        "Injection",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.Info,
		FileTypes:       []string{".go", ".py", ".java", ".js", ".ts", ".php", ".rb", ".cs"},
		Recommendation:  "No action needed; keep binding values this way.",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`(?i)\b(execute|query|exec|queryrow|querycontext|execcontext)\s*\(\s*(ctx\s*,\s*)?["'` + "`" + `][^"'` + "`" + `\n]*\b(select|insert|update|delete)\b[^"'` + "`" + `\n]*(\?|\$\d+|:\w+|%\(\w+\)s)[^"'` + "`" + `\n]*["'` + "`" + `]\s*,`),
		},
	})
}
