// Package render turns review reports into human-readable documents.
package render

import (
	"fmt"
	"strings"

	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
)

// Markdown renders a report as a markdown document.
func Markdown(report *review.Report) string {
	var b strings.Builder

	title := report.DocumentTitle
	if title == "" {
		title = report.DocumentID
	}
	fmt.Fprintf(&b, "# Review: %s\n\n", title)

	if report.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", report.Source)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "**%s**\n\n", report.Summary)

	b.WriteString("| Dimension | Outcome | Uncertain |\n")
	b.WriteString("|---|---|---|\n")
	for _, res := range report.Results {
		uncertain := ""
		if res.Uncertain {
			uncertain = "yes"
		}
		name := res.DimensionID
		if res.DimensionName != "" {
			name = fmt.Sprintf("%s %s", res.DimensionID, res.DimensionName)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", name, res.Outcome, uncertain)
	}
	b.WriteString("\n")

	for _, res := range report.Results {
		fmt.Fprintf(&b, "## %s", res.DimensionID)
		if res.DimensionName != "" {
			fmt.Fprintf(&b, " %s", res.DimensionName)
		}
		fmt.Fprintf(&b, ": %s\n\n", res.Outcome)

		if res.Rationale != "" {
			fmt.Fprintf(&b, "%s\n\n", res.Rationale)
		}

		for _, cite := range res.Evidence {
			marker := "+"
			if cite.Polarity == rubric.PolarityNegative {
				marker = "-"
			}
			note := ""
			if !cite.Resolved {
				note = " (unresolved)"
			}
			fmt.Fprintf(&b, "- [%s] (%s) %q%s\n", cite.FragmentID, marker, cite.Quote, note)
		}
		if len(res.Evidence) > 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
