package assembler

import "regexp"

var reQuotedValue = regexp.MustCompile(`(["'])([^"'\s]{4})[^"'\s]{4,}(["'])`)

// Redact masks quoted literals of eight or more characters, keeping the
// first four so a reviewer can still recognise the value.
func Redact(s string) string {
	return reQuotedValue.ReplaceAllString(s, "${1}${2}****${3}")
}
