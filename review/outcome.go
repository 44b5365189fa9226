package review

import (
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/rubric"
)

// OutcomeKind distinguishes an evidenced tier from a conditional dimension
// whose subject matter was absent from the document.
type OutcomeKind string

const (
	// OutcomeEvidenced means the dimension was judged and earned a tier.
	OutcomeEvidenced OutcomeKind = "evidenced"

	// OutcomeNotEvidenced means a conditional dimension's subject matter was
	// absent, so no tier applies. Not a failing grade.
	OutcomeNotEvidenced OutcomeKind = "not_evidenced"
)

// Outcome is the judgement for one dimension. Tier is set only when Kind is
// OutcomeEvidenced.
type Outcome struct {
	Kind OutcomeKind      `json:"kind"`
	Tier rubric.TierLabel `json:"tier,omitempty"`
}

// Evidenced builds an evidenced outcome with the given tier.
func Evidenced(tier rubric.TierLabel) Outcome {
	return Outcome{Kind: OutcomeEvidenced, Tier: tier}
}

// NotEvidenced builds a not-evidenced outcome.
func NotEvidenced() Outcome {
	return Outcome{Kind: OutcomeNotEvidenced}
}

// String renders the tier label, or NOT_EVIDENCED when no tier applies.
func (o Outcome) String() string {
	if o.Kind == OutcomeNotEvidenced {
		return "NOT_EVIDENCED"
	}
	return o.Tier.String()
}

// Result is the finished evaluation of one dimension. Immutable after the
// session creates it.
type Result struct {
	DimensionID   string              `json:"dimension"`
	DimensionName string              `json:"dimension_name,omitempty"`
	Outcome       Outcome             `json:"outcome"`
	Rationale     string              `json:"rationale"`
	Evidence      []evidence.Citation `json:"evidence"`
	Uncertain     bool                `json:"uncertainty"`
	Model         string              `json:"model,omitempty"`
	RequestID     string              `json:"request_id,omitempty"`
	Elapsed       time.Duration       `json:"elapsed_ns,omitempty"`
}
