package render_test

import (
	"testing"
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/render"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	report := &review.Report{
		ID:            "r-1",
		DocumentID:    "incident-2026-03",
		DocumentTitle: "Payment outage retrospective",
		GeneratedAt:   time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Summary:       "2 dimensions evaluated: 1 SOME, 1 not evidenced",
		Results: []review.Result{
			{
				DimensionID:   "D1",
				DimensionName: "Causal Reasoning",
				Outcome:       review.Evidenced(rubric.TierSome),
				Rationale:     "Causes are named but not traced to conditions.",
				Uncertain:     true,
				Evidence: []evidence.Citation{
					{FragmentID: "c01", Quote: "the connection pool was exhausted", Polarity: rubric.PolarityNegative, Resolved: true},
					{FragmentID: "c09", Quote: "unverifiable claim", Polarity: rubric.PolarityPositive},
				},
			},
			{
				DimensionID:   "D7",
				DimensionName: "Improvement Actions",
				Outcome:       review.NotEvidenced(),
				Rationale:     "The document contains no improvement actions.",
			},
		},
	}

	doc := render.Markdown(report)

	assert.Contains(t, doc, "# Review: Payment outage retrospective")
	assert.Contains(t, doc, "2 dimensions evaluated")
	assert.Contains(t, doc, "| D1 Causal Reasoning | SOME | yes |")
	assert.Contains(t, doc, "| D7 Improvement Actions | NOT_EVIDENCED |  |")
	assert.Contains(t, doc, "## D1 Causal Reasoning: SOME")
	assert.Contains(t, doc, "[c01] (-)")
	assert.Contains(t, doc, "(unresolved)")
	assert.Contains(t, doc, "## D7 Improvement Actions: NOT_EVIDENCED")
}

func TestMarkdownFallsBackToDocumentID(t *testing.T) {
	report := &review.Report{
		ID:          "r-2",
		DocumentID:  "incident-2026-04",
		GeneratedAt: time.Now().UTC(),
		Summary:     "0 dimensions evaluated",
	}

	doc := render.Markdown(report)
	assert.Contains(t, doc, "# Review: incident-2026-04")
}
