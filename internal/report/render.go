package report

import (
	"fmt"
	"strings"

	"github.com/accrava/secretsweep/internal/types"
)

const (
	Title     = "SECURITY SCAN REPORT"
	NoIssues  = "No security issues found!"
	ruleWidth = 50
)

// Recommendations is the fixed remediation list appended when issues exist.
var Recommendations = []string{
	"Remove hardcoded secrets from client-side code",
	"Use environment variables for sensitive data",
	"Implement proper authentication (JWT, OAuth)",
	"Use HTTPS for all communications",
	"Implement proper session management",
}

// Render formats a scan result as the plain-text report. It is pure: the
// same result always yields the same text.
func Render(r types.ScanResult) string {
	var b strings.Builder
	b.WriteString(Title + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if scripts := withIssues(r.Scripts); len(scripts) > 0 {
		b.WriteString("SCRIPTS WITH ISSUES:\n")
		for _, f := range scripts {
			fmt.Fprintf(&b, "\nScript: %s\n", f.Label)
			writeIssues(&b, f.Issues)
		}
		b.WriteString("\n")
	}

	if storage := withIssues(r.Storage); len(storage) > 0 {
		b.WriteString("STORAGE WITH ISSUES:\n")
		for _, f := range storage {
			fmt.Fprintf(&b, "\n%s: %s\n", f.Namespace, f.Key)
			writeIssues(&b, f.Issues)
		}
		b.WriteString("\n")
	}

	if review := needsReview(r); len(review) > 0 {
		b.WriteString("MANUAL REVIEW REQUIRED:\n")
		for _, f := range review {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Label, f.Warning)
		}
		b.WriteString("\n")
	}

	total := Total(r)
	if total == 0 {
		b.WriteString(NoIssues + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Total issues found: %d\n", total)
	b.WriteString("\nRECOMMENDATIONS:\n")
	for i, rec := range Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// Total counts findings that carry at least one issue, scripts and storage
// alike. Manual-review placeholders are not counted.
func Total(r types.ScanResult) int {
	return len(withIssues(r.Scripts)) + len(withIssues(r.Storage))
}

func writeIssues(b *strings.Builder, issues []types.Issue) {
	for _, is := range issues {
		fmt.Fprintf(b, "  ! %s: %s (%d occurrences)\n", is.Severity, is.Keyword, is.Count)
	}
}

func withIssues(fs []types.Finding) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if f.HasIssues() {
			out = append(out, f)
		}
	}
	return out
}

func needsReview(r types.ScanResult) []types.Finding {
	var out []types.Finding
	for _, f := range r.Scripts {
		if f.Warning != "" {
			out = append(out, f)
		}
	}
	for _, f := range r.Storage {
		if f.Warning != "" {
			out = append(out, f)
		}
	}
	return out
}
