package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/source"
)

// FindingMarkdown renders one finding in the review finding format.
func FindingMarkdown(f ir.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### [%s] %s\n\n", f.Severity, f.Title)
	field(&b, "Agent", f.AgentID)
	if f.File != "" {
		loc := f.File
		if !f.Lines.IsZero() {
			loc += ":" + f.Lines.String()
		}
		field(&b, "File", "`"+loc+"`")
	}
	field(&b, "Category", f.Category)
	field(&b, "Description", f.Description)
	if ev := strings.Trim(f.Evidence, "\n"); ev != "" {
		b.WriteString(evidence(f, ev))
	}
	field(&b, "Recommendation", f.Recommendation)
	field(&b, "Reference", f.Reference)
	if len(f.MergedFrom) > 0 {
		field(&b, "Merged From", strings.Join(f.MergedFrom, ", "))
	}
	return b.String()
}

func field(b *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "**%s:** %s\n\n", name, value)
}

// evidence uses a fenced block for CRITICAL/HIGH and for multi-line
// excerpts, inline code otherwise.
func evidence(f ir.Finding, ev string) string {
	if !f.Severity.AtLeast(ir.High) && !strings.Contains(ev, "\n") && !strings.Contains(ev, "`") {
		return fmt.Sprintf("**Evidence:** `%s`\n\n", strings.TrimSpace(ev))
	}
	lang := ""
	if f.File != "" && !f.ManualReview {
		lang = source.DetectLanguage(f.File)
	}
	fence := "```"
	for strings.Contains(ev, fence) {
		fence += "`"
	}
	return fmt.Sprintf("**Evidence:**\n%s%s\n%s\n%s\n\n", fence, lang, ev, fence)
}

// SummaryTable renders the five-row severity count table. Rows with a
// zero count are kept.
func SummaryTable(s ir.Summary) string {
	var b strings.Builder
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|----------|-------|\n")
	for _, sev := range ir.Severities() {
		fmt.Fprintf(&b, "| %s | %d |\n", sev, s.Count(sev))
	}
	return b.String()
}

// RenderMarkdown writes the summary table followed by every finding.
func RenderMarkdown(w io.Writer, run *ir.Run) error {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	b.WriteString(SummaryTable(run.Summary))
	b.WriteString("\n## Findings\n\n")
	if len(run.Findings) == 0 {
		b.WriteString("No findings.\n")
	}
	for i, f := range run.Findings {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		b.WriteString(FindingMarkdown(f))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteMarkdown(runID, outDir string, run *ir.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".md")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := RenderMarkdown(f, run); err != nil {
		return "", err
	}
	return path, nil
}
