package review

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/lrrit/rubric"
	"github.com/google/uuid"
)

// Stats summarizes the per-dimension results of a report.
type Stats struct {
	// Evaluated counts the dimensions that received a result.
	Evaluated int `json:"evaluated"`

	// ByTier counts evidenced outcomes per tier.
	ByTier map[rubric.TierLabel]int `json:"by_tier"`

	// NotEvidenced counts conditional dimensions with absent subject matter.
	NotEvidenced int `json:"not_evidenced"`

	// Uncertain counts low-confidence results.
	Uncertain int `json:"uncertain"`
}

// Report is the assembled review of one document. Read-only once built.
type Report struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title,omitempty"`
	Source        string    `json:"source,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	Results       []Result  `json:"results"`
	Stats         Stats     `json:"stats"`
	Summary       string    `json:"summary"`
}

// Result returns the result for a dimension id, if present.
func (r *Report) Result(dimensionID string) (Result, bool) {
	for _, res := range r.Results {
		if res.DimensionID == dimensionID {
			return res, true
		}
	}
	return Result{}, false
}

// Aggregate assembles per-dimension results into a report. Results are
// ordered by dimension id; a dimension appearing twice is an error.
func Aggregate(results []Result) (*Report, error) {
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		if _, dup := seen[res.DimensionID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDimension, res.DimensionID)
		}
		seen[res.DimensionID] = struct{}{}
	}

	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].DimensionID < ordered[j].DimensionID
	})

	stats := computeStats(ordered)

	return &Report{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Results:     ordered,
		Stats:       stats,
		Summary:     generateSummary(stats),
	}, nil
}

func computeStats(results []Result) Stats {
	stats := Stats{
		Evaluated: len(results),
		ByTier:    make(map[rubric.TierLabel]int),
	}
	for _, res := range results {
		switch res.Outcome.Kind {
		case OutcomeNotEvidenced:
			stats.NotEvidenced++
		default:
			stats.ByTier[res.Outcome.Tier]++
		}
		if res.Uncertain {
			stats.Uncertain++
		}
	}
	return stats
}

func generateSummary(stats Stats) string {
	var parts []string
	for _, label := range rubric.KnownTierLabels() {
		if n := stats.ByTier[label]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	if stats.NotEvidenced > 0 {
		parts = append(parts, fmt.Sprintf("%d not evidenced", stats.NotEvidenced))
	}

	summary := fmt.Sprintf("%d dimensions evaluated", stats.Evaluated)
	if len(parts) > 0 {
		summary += ": " + strings.Join(parts, ", ")
	}
	if stats.Uncertain > 0 {
		summary += fmt.Sprintf(" (%d uncertain)", stats.Uncertain)
	}
	return summary
}
