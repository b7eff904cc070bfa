package rules

import (
	"regexp"

	"github.com/codewithboateng/oversight/internal/ir"
)

func init() {
	registerBuiltin(Checkpoint{
		ID:              "SEC-WEAK-HASH",
		Title:           "Weak cryptographic algorithm",
		Description:     "MD5, SHA-1, DES or RC4 is used where collision or key-recovery resistance may matter.",
		Category:        "Cryptography",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.Medium,
		Recommendation:  "Use SHA-256 or stronger for hashing and AES-GCM or ChaCha20-Poly1305 for encryption.",
		Reference:       "https://cwe.mitre.org/data/definitions/327.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`(?i)\bcrypto/(md5|sha1|des|rc4)\b|\bhashlib\.(md5|sha1)\b|\b(md5|sha1)\.(New|Sum)\b|MessageDigest\.getInstance\(\s*"(MD5|SHA-?1)"|createHash\(\s*['"](md5|sha1)['"]`),
		},
	})

	registerBuiltin(Checkpoint{
		ID:              "SEC-UNSAFE-DESERIALIZATION",
		Title:           "Unsafe deserialization",
		Description:     "Untrusted data may be deserialized with a loader that can construct arbitrary objects.",
		Category:        "Deserialization",
		AgentID:         "security-reviewer",
		DefaultSeverity: ir.High,
		FileTypes:       []string{".py", ".rb", ".php", ".java"},
		Recommendation:  "Use a safe loader (yaml.safe_load, JSON) or verify the payload signature before decoding.",
		Reference:       "https://cwe.mitre.org/data/definitions/502.html",
		Detector: Detector{
			Kind:    DetectRegex,
			Pattern: regexp.MustCompile(`\bpickle\.loads?\(|\byaml\.(?:unsafe_)?load\(|\bunserialize\(|\bMarshal\.load\(|new\s+ObjectInputStream\(|\bmarshal\.loads\(`),
		},
	})
}
