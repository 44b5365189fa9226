// Package model provides capability-based model selection for evaluation
// work. Callers specify capabilities (judging, screening, fast) and the
// registry resolves them to available endpoints with fallback chains.
package model

// Capability represents a semantic capability for model selection.
// Instead of specifying a model name, callers specify "judging" or "fast".
type Capability string

const (
	// CapabilityJudging is for dimension evaluation verdicts.
	CapabilityJudging Capability = "judging"

	// CapabilityScreening is for document triage and metadata extraction.
	CapabilityScreening Capability = "screening"

	// CapabilityFast is for quick responses, simple tasks.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityJudging, CapabilityScreening, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
