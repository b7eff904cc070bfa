package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "SEC-HARDCODED-SECRET",
		Title:           "Hardcoded secret",
		Description:     "A password, token or API key is assigned a literal value in source.",
		Category:        "Secrets",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.High,
		Recommendation:  "Load the value from the environment or a secret manager and rotate the exposed credential.",
		Reference:       "https://cwe.mitre.org/data/definitions/798.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`(?i)\b(password|passwd|secret|api_?key|access_?token|auth_?token|credential)s?\b["']?\s*[:=]\s*["'][^"'\s]{8,}["']`),
		},
	})

	registerBuiltin(Checkpoint{
		ID:              "SEC-PRIVATE-KEY",
		Title:           "Private key committed to the repository",
		Description:     "PEM-encoded private key material is present in a tracked file.",
		Category:        "Secrets",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.Critical,
		Recommendation:  "Remove the key from history, revoke it, and issue a new one stored outside the repository.",
		Reference:       "https://cwe.mitre.org/data/definitions/321.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----`),
		},
	})
}
