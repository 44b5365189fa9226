package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360studio/lrrit/llm"
	"github.com/c360studio/lrrit/model"
	"github.com/c360studio/lrrit/review/prompts"
)

// Judge is the production Collaborator. It wraps the llm client, builds the
// dimension prompt, and parses the strict JSON verdict from the response.
type Judge struct {
	client            *llm.Client
	defaultCapability string
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithDefaultCapability sets the capability used for dimensions that do not
// declare one. Defaults to judging.
func WithDefaultCapability(capability string) JudgeOption {
	return func(j *Judge) {
		j.defaultCapability = capability
	}
}

// NewJudge creates a Judge over the given client.
func NewJudge(client *llm.Client, opts ...JudgeOption) *Judge {
	j := &Judge{
		client:            client,
		defaultCapability: model.CapabilityJudging.String(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// verdictPayload mirrors the JSON schema the prompt demands.
type verdictPayload struct {
	Rating        string            `json:"rating"`
	Rationale     string            `json:"rationale"`
	Evidence      []VerdictEvidence `json:"evidence"`
	SubjectAbsent bool              `json:"subject_absent"`
	Uncertainty   bool              `json:"uncertainty"`
}

// EvaluateDimension implements Collaborator.
func (j *Judge) EvaluateDimension(ctx context.Context, req CollabRequest) (*Verdict, error) {
	prompt := prompts.Build(req.Dimension, req.Pack)

	capability := req.Dimension.Capability
	if capability == "" {
		capability = j.defaultCapability
	}

	// Deterministic judging: same document, same verdict.
	temperature := 0.0

	resp, err := j.client.Complete(ctx, llm.Request{
		Capability:  capability,
		Temperature: &temperature,
		Messages: []llm.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("verdict for %s is not JSON: %w", req.Dimension.ID, err)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse verdict for %s: %w", req.Dimension.ID, err)
	}

	return &Verdict{
		Tier:          payload.Rating,
		Rationale:     payload.Rationale,
		Evidence:      payload.Evidence,
		SubjectAbsent: payload.SubjectAbsent,
		Uncertain:     payload.Uncertainty,
		Model:         resp.Model,
		RequestID:     resp.RequestID,
	}, nil
}
