package review

import (
	"strings"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/rubric"
)

// applyGuards runs plausibility post-checks on a finished result. Guards
// never rewrite a verdict; they report whether uncertainty should be
// escalated.
func applyGuards(dim rubric.Dimension, result *Result) bool {
	if result.Outcome.Kind == OutcomeNotEvidenced {
		return false
	}

	if guardUnresolvedCitations(result.Evidence) {
		return true
	}
	if guardMissingEvidence(result) {
		return true
	}
	if guardTierPolarityMismatch(result) {
		return true
	}
	if guardCueContainment(dim, result.Evidence) {
		return true
	}
	return false
}

// guardUnresolvedCitations flags results citing quotes that could not be
// located in the pack.
func guardUnresolvedCitations(citations []evidence.Citation) bool {
	for _, c := range citations {
		if !c.Resolved {
			return true
		}
	}
	return false
}

// guardMissingEvidence flags a graded result with nothing cited. A judgement
// without citations cannot be checked against the document.
func guardMissingEvidence(result *Result) bool {
	return len(result.Evidence) == 0
}

// guardTierPolarityMismatch flags a tier whose citations point the wrong
// way: a top tier with no positive citation, or a bottom tier with no
// negative one.
func guardTierPolarityMismatch(result *Result) bool {
	var positives, negatives int
	for _, c := range result.Evidence {
		switch c.Polarity {
		case rubric.PolarityPositive:
			positives++
		case rubric.PolarityNegative:
			negatives++
		}
	}

	switch result.Outcome.Tier {
	case rubric.TierGood:
		return positives == 0
	case rubric.TierLittle:
		return negatives == 0
	}
	return false
}

// guardCueContainment flags positive citations that contain none of the
// dimension's positive cues when cues are declared. A weak signal, so it
// only escalates uncertainty when no citation matches any cue at all.
func guardCueContainment(dim rubric.Dimension, citations []evidence.Citation) bool {
	if len(dim.PositiveCues) == 0 || len(citations) == 0 {
		return false
	}

	var positives int
	for _, c := range citations {
		if c.Polarity != rubric.PolarityPositive {
			continue
		}
		positives++
		quote := strings.ToLower(c.Quote)
		for _, cue := range dim.PositiveCues {
			if strings.Contains(quote, strings.ToLower(cue)) {
				return false
			}
		}
	}

	// Only meaningful when there are positive citations to check.
	return positives > 0
}
