// Package prompts builds the judge prompt for a single rubric dimension.
package prompts

import (
	"fmt"
	"strings"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/rubric"
)

// Prompt is a rendered system/user message pair for one dimension judgement.
type Prompt struct {
	System string
	User   string
}

// Build renders the judgement prompt for a dimension against a pack.
func Build(dim rubric.Dimension, pack *evidence.Pack) Prompt {
	return Prompt{
		System: buildSystem(dim),
		User:   buildUser(dim, pack),
	}
}

func buildSystem(dim rubric.Dimension) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a careful reviewer of incident learning reports.\n")
	fmt.Fprintf(&b, "You evaluate exactly one dimension: %s (%s).\n\n", dim.ID, dim.Name)
	fmt.Fprintf(&b, "Purpose of this dimension:\n%s\n\n", dim.Purpose)

	b.WriteString("Rate the document against these tiers:\n")
	for _, tier := range dim.Tiers {
		fmt.Fprintf(&b, "- %s: %s\n", tier.Label, tier.Criteria)
	}
	b.WriteString("\n")

	if len(dim.Constraints) > 0 {
		b.WriteString("Constraints:\n")
		for _, c := range dim.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if dim.Conditional {
		b.WriteString("If the document contains no subject matter for this dimension, " +
			"set subject_absent to true instead of grading the absence. " +
			"Absence is not a failing grade.\n\n")
	}

	b.WriteString("Respond with a single JSON object and nothing else:\n")
	b.WriteString(`{
  "rating": "GOOD" | "SOME" | "LITTLE",
  "rationale": "one or two sentences grounded in the evidence",
  "evidence": [
    {"id": "c01", "quote": "verbatim excerpt, at most 25 words", "evidence_type": "positive" | "negative"}
  ],
  "subject_absent": false,
  "uncertainty": false
}
`)
	b.WriteString("\nRules:\n")
	b.WriteString("- Quote verbatim from the document; never paraphrase inside quotes.\n")
	b.WriteString("- Each quote must be at most 25 words.\n")
	b.WriteString("- The id must name the fragment the quote comes from.\n")
	b.WriteString("- Set uncertainty to true when the evidence is thin or mixed.\n")

	return b.String()
}

func buildUser(dim rubric.Dimension, pack *evidence.Pack) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document: %s\n", pack.Title)
	fmt.Fprintf(&b, "Evaluate dimension %s.\n\n", dim.ID)

	for _, frag := range pack.Fragments {
		fmt.Fprintf(&b, "[%s]", frag.ID)
		if frag.Section != "" {
			fmt.Fprintf(&b, " (%s)", frag.Section)
		}
		b.WriteString("\n")
		b.WriteString(frag.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
