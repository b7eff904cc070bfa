package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "SEC-SQL-CONCAT",
		Title:           "SQL built by string concatenation",
		Description:     "A query string containing SQL keywords is concatenated or interpolated before execution.",
		Category:        "Injection",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.High,
		FileTypes:       []string{".go", ".py", ".java", ".js", ".ts", ".php", ".rb", ".cs"},
		Recommendation:  "Use parameterized queries or a query builder that binds values.",
		Reference:       "https://owasp.org/www-community/attacks/SQL_Injection",
		Detector: Detector{
			Kind: DetectRegex,
			Pattern: regexp.MustCompile(`(?i)\b(execute|query|raw|exec|prepare)\s*\(\s*(` +
				`["'][^"'\n]*\b(select|insert|update|delete)\b[^"'\n]*["']\s*(\+|%|\.format\()` +
				`|f["'][^"'\n]*\b(select|insert|update|delete)\b[^"'\n]*\{` +
				`|fmt\.Sprintf\(\s*"[^"\n]*\b(select|insert|update|delete)\b[^"\n]*%[sv])`),
		},
	})

	registerBuiltin(Checkpoint{
		ID:              "SEC-COMMAND-INJECTION",
		Title:           "Shell command built from dynamic input",
		Description:     "A process or shell invocation receives a concatenated or interpolated argument.",
		Category:        "Injection",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.Critical,
		Recommendation:  "Pass arguments as a list without a shell and validate them against an allow-list.",
		Reference:       "https://cwe.mitre.org/data/definitions/78.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`(exec\.Command|os\.system|os\.popen|subprocess\.(?:call|run|Popen|check_output)|child_process\.exec(?:Sync)?|\bexecSync|Runtime\.getRuntime\(\)\.exec)\s*\([^)\n]*(\+|\$\{|%s|\bf["'])`),
		},
	})
}
