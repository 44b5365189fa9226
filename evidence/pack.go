// Package evidence models the target document under review as a pack of
// addressable fragments, and resolves collaborator-cited quotes back to the
// fragments they came from.
package evidence

import (
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/lrrit/rubric"
)

// Fragment is one addressable slice of the target document.
type Fragment struct {
	// ID is a stable fragment identifier within the pack ("c01", "c02", ...).
	ID string `json:"id"`

	// Section is the heading the fragment was taken from, if any.
	Section string `json:"section,omitempty"`

	// Content is the fragment text.
	Content string `json:"content"`

	// TokenCount is an estimate of the fragment size in tokens.
	TokenCount int `json:"token_count,omitempty"`
}

// Pack is the fragmented target document handed to evaluation sessions.
type Pack struct {
	// ReportID identifies the document under review.
	ReportID string `json:"report_id"`

	// Title is the document title, if known.
	Title string `json:"title,omitempty"`

	// Source records where the document came from (file path or URL).
	Source string `json:"source,omitempty"`

	// RetrievedAt is when the document was ingested.
	RetrievedAt time.Time `json:"retrieved_at"`

	// Fragments holds the document body in reading order.
	Fragments []Fragment `json:"fragments"`
}

// Validate checks the pack's structural invariants.
func (p *Pack) Validate() error {
	if p.ReportID == "" {
		return fmt.Errorf("pack report id is required")
	}
	if len(p.Fragments) == 0 {
		return fmt.Errorf("pack %s has no fragments", p.ReportID)
	}
	seen := make(map[string]bool, len(p.Fragments))
	for _, f := range p.Fragments {
		if f.ID == "" {
			return fmt.Errorf("pack %s contains a fragment without an id", p.ReportID)
		}
		if seen[f.ID] {
			return fmt.Errorf("pack %s repeats fragment id %s", p.ReportID, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// Fragment returns the fragment with the given id.
func (p *Pack) Fragment(id string) (Fragment, bool) {
	for _, f := range p.Fragments {
		if f.ID == id {
			return f, true
		}
	}
	return Fragment{}, false
}

// Text returns the joined document body.
func (p *Pack) Text() string {
	parts := make([]string, len(p.Fragments))
	for i, f := range p.Fragments {
		parts[i] = f.Content
	}
	return strings.Join(parts, "\n\n")
}

// Citation is one evidence snippet cited by the collaborator, resolved
// against the pack it was quoted from.
type Citation struct {
	// FragmentID is the fragment the quote resolves to. When resolution
	// failed this keeps the id the collaborator claimed.
	FragmentID string `json:"fragment_id,omitempty"`

	// Quote is the verbatim excerpt.
	Quote string `json:"quote"`

	// Polarity records whether the quote counts for or against the dimension.
	Polarity rubric.Polarity `json:"polarity"`

	// Resolved reports whether the quote was located in the pack.
	Resolved bool `json:"resolved"`
}
