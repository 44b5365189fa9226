package llm

import (
	"context"
	"time"
)

// CallRecord captures a single collaborator call for auditing.
type CallRecord struct {
	RequestID   string     `json:"request_id"`
	Capability  string     `json:"capability"`
	Model       string     `json:"model,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Usage       TokenUsage `json:"usage"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
	Retries     int        `json:"retries"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns the wall-clock time the call took.
func (r *CallRecord) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the call completed without error.
func (r *CallRecord) Succeeded() bool {
	return r.Error == ""
}

// CallRecorder persists collaborator call records. Implementations must be
// safe for concurrent use; recording failures are logged, never propagated.
type CallRecorder interface {
	RecordCall(ctx context.Context, record *CallRecord) error
}
