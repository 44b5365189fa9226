// Package review runs rubric dimensions against an evidence pack through an
// external text-evaluation collaborator and aggregates the per-dimension
// results into a report.
package review

import (
	"context"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/rubric"
)

// Collaborator is the external text-evaluation boundary. Implementations
// judge one dimension against one evidence pack per call. Implementations
// must honor ctx cancellation and must not retry on their own beyond
// transport-level policy.
type Collaborator interface {
	EvaluateDimension(ctx context.Context, req CollabRequest) (*Verdict, error)
}

// CollabRequest carries everything a collaborator needs for one judgement.
type CollabRequest struct {
	Pack      *evidence.Pack
	Dimension rubric.Dimension
}

// VerdictEvidence is one evidence citation as returned by the collaborator,
// before resolution against the pack.
type VerdictEvidence struct {
	FragmentID string `json:"id"`
	Quote      string `json:"quote"`
	Polarity   string `json:"evidence_type"`
}

// Verdict is the raw judgement a collaborator returns for one dimension.
type Verdict struct {
	// Tier is the raw tier label as returned. The session validates it
	// against the dimension's declared tiers.
	Tier string

	// Rationale is the collaborator's reasoning, grounded in the citations.
	Rationale string

	// Evidence holds the cited excerpts.
	Evidence []VerdictEvidence

	// SubjectAbsent signals the dimension's subject matter is absent from
	// the document. Only meaningful for conditional dimensions.
	SubjectAbsent bool

	// Uncertain flags a low-confidence judgement.
	Uncertain bool

	// Model identifies the model that produced the verdict, if known.
	Model string

	// RequestID correlates the verdict with the underlying call.
	RequestID string
}

// CollaboratorFunc adapts a function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, req CollabRequest) (*Verdict, error)

func (f CollaboratorFunc) EvaluateDimension(ctx context.Context, req CollabRequest) (*Verdict, error) {
	return f(ctx, req)
}
