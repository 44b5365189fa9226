// Package rubric models review dimensions and their evidence tiers, and
// provides the registry that loads dimension definitions from structured
// markdown documents.
package rubric

// TierLabel identifies the strength of evidence found for a dimension.
type TierLabel string

const (
	// TierGood indicates strong, explicit evidence for the dimension.
	TierGood TierLabel = "GOOD"

	// TierSome indicates partial or mixed evidence.
	TierSome TierLabel = "SOME"

	// TierLittle indicates weak or contradicting evidence.
	TierLittle TierLabel = "LITTLE"
)

// KnownTierLabels returns the fixed tier set ordered best to worst.
func KnownTierLabels() []TierLabel {
	return []TierLabel{TierGood, TierSome, TierLittle}
}

// tierRank returns a label's position in the canonical order, best first.
func tierRank(label TierLabel) int {
	for i, l := range KnownTierLabels() {
		if l == label {
			return i
		}
	}
	return len(KnownTierLabels())
}

// ParseTierLabel converts a string to a TierLabel.
// Returns false if the label is not in the known set.
func ParseTierLabel(s string) (TierLabel, bool) {
	switch TierLabel(s) {
	case TierGood, TierSome, TierLittle:
		return TierLabel(s), true
	}
	return "", false
}

// String returns the string representation of the tier label.
func (t TierLabel) String() string {
	return string(t)
}

// Tier pairs a tier label with the criteria a document must meet to earn it.
type Tier struct {
	Label    TierLabel `json:"label" yaml:"label"`
	Criteria string    `json:"criteria" yaml:"criteria"`
}

// Polarity marks whether a textual cue counts for or against a positive
// assessment on a dimension.
type Polarity string

const (
	// PolarityPositive marks a cue that supports a positive assessment.
	PolarityPositive Polarity = "positive"

	// PolarityNegative marks a cue that counts against a positive assessment.
	PolarityNegative Polarity = "negative"
)

// ParsePolarity converts a string to a Polarity, returning false for
// unrecognized values.
func ParsePolarity(s string) (Polarity, bool) {
	switch Polarity(s) {
	case PolarityPositive, PolarityNegative:
		return Polarity(s), true
	}
	return "", false
}
