package rubric

import "fmt"

// Dimension is a single axis of evaluation for a learning response.
// Dimensions are immutable once loaded into a Registry.
type Dimension struct {
	// ID is the short dimension code, e.g. "D6".
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable dimension title.
	Name string `json:"name" yaml:"name"`

	// Purpose describes what the dimension assesses.
	Purpose string `json:"purpose" yaml:"purpose"`

	// Tiers holds the declared evidence tiers, ordered best to worst.
	Tiers []Tier `json:"tiers" yaml:"tiers"`

	// PositiveCues are textual markers that support a positive assessment.
	// Used only for plausibility guards, never for decision logic.
	PositiveCues []string `json:"positive_cues,omitempty" yaml:"positive_cues,omitempty"`

	// NegativeCues are textual markers that count against a positive assessment.
	NegativeCues []string `json:"negative_cues,omitempty" yaml:"negative_cues,omitempty"`

	// Constraints holds free-text evaluation constraints for the judge.
	Constraints []string `json:"constraints,omitempty" yaml:"constraints,omitempty"`

	// Conditional marks dimensions whose subject matter may legitimately be
	// absent from a document (improvement actions in AAR-style reports).
	// Absence is then evidence-neutral, not evidence-negative.
	Conditional bool `json:"conditional,omitempty" yaml:"conditional,omitempty"`

	// Capability selects the model capability used to judge this dimension.
	// Empty means the session default.
	Capability string `json:"capability,omitempty" yaml:"capability,omitempty"`
}

// HasTier reports whether the label is among the dimension's declared tiers.
func (d Dimension) HasTier(label TierLabel) bool {
	for _, t := range d.Tiers {
		if t.Label == label {
			return true
		}
	}
	return false
}

// TierLabels returns the declared tier labels in order.
func (d Dimension) TierLabels() []TierLabel {
	labels := make([]TierLabel, len(d.Tiers))
	for i, t := range d.Tiers {
		labels[i] = t.Label
	}
	return labels
}

// Tier returns the declared tier for a label.
func (d Dimension) Tier(label TierLabel) (Tier, bool) {
	for _, t := range d.Tiers {
		if t.Label == label {
			return t, true
		}
	}
	return Tier{}, false
}

// Validate checks the dimension's structural invariants: a non-empty ID and
// purpose, and a non-empty tier set with unique labels from the known set.
func (d Dimension) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dimension id is required")
	}
	if d.Purpose == "" {
		return fmt.Errorf("dimension %s: purpose is required", d.ID)
	}
	if len(d.Tiers) == 0 {
		return fmt.Errorf("dimension %s: at least one evidence tier is required", d.ID)
	}

	seen := make(map[TierLabel]bool, len(d.Tiers))
	prevRank := -1
	for _, t := range d.Tiers {
		if _, ok := ParseTierLabel(string(t.Label)); !ok {
			return fmt.Errorf("dimension %s: unknown tier label %q", d.ID, t.Label)
		}
		if seen[t.Label] {
			return fmt.Errorf("dimension %s: duplicate tier label %q", d.ID, t.Label)
		}
		seen[t.Label] = true

		rank := tierRank(t.Label)
		if rank < prevRank {
			return fmt.Errorf("dimension %s: tiers must be declared best to worst, %q is out of order", d.ID, t.Label)
		}
		prevRank = rank
	}
	return nil
}

// LowestTier returns the worst declared tier by the canonical ordering.
func (d Dimension) LowestTier() TierLabel {
	lowest := d.Tiers[0].Label
	for _, t := range d.Tiers[1:] {
		if tierRank(t.Label) > tierRank(lowest) {
			lowest = t.Label
		}
	}
	return lowest
}
