package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/metrics"
	"github.com/c360studio/lrrit/rubric"
	"golang.org/x/sync/errgroup"
)

// Session evaluates rubric dimensions against an evidence pack, fanning out
// one collaborator call per dimension.
type Session struct {
	registry *rubric.Registry
	collab   Collaborator

	timeout     time.Duration
	concurrency int
	partial     bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTimeout sets the per-dimension collaborator call timeout.
// Zero disables the per-call deadline.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithConcurrency limits the number of in-flight collaborator calls.
// Zero or negative means unlimited.
func WithConcurrency(n int) SessionOption {
	return func(s *Session) {
		s.concurrency = n
	}
}

// WithPartialResults makes Evaluate return the successful results alongside
// a joined error describing the dimensions that failed, instead of failing
// the whole call on the first error.
func WithPartialResults(enabled bool) SessionOption {
	return func(s *Session) {
		s.partial = enabled
	}
}

// WithMetrics wires prometheus instrumentation. A nil value is accepted.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates a session over the given dimension registry and
// collaborator.
func NewSession(registry *rubric.Registry, collab Collaborator, opts ...SessionOption) *Session {
	s := &Session{
		registry: registry,
		collab:   collab,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate judges the requested dimensions against the pack. Results are
// ordered by requested position. An empty dimensionIDs slice evaluates every
// dimension in the registry, in registry order.
//
// If ctx is canceled, in-flight collaborator calls are canceled and Evaluate
// returns (nil, ctx.Err()); completed results are discarded.
func (s *Session) Evaluate(ctx context.Context, pack *evidence.Pack, dimensionIDs []string) ([]Result, error) {
	if pack == nil {
		return nil, fmt.Errorf("evidence pack is required")
	}
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evidence pack: %w", err)
	}

	if len(dimensionIDs) == 0 {
		dimensionIDs = s.registry.IDs()
	}

	// Resolve everything up front so a bad request fails before any call.
	dims := make([]rubric.Dimension, len(dimensionIDs))
	seen := make(map[string]struct{}, len(dimensionIDs))
	for i, id := range dimensionIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDimension, id)
		}
		seen[id] = struct{}{}

		dim, err := s.registry.Get(id)
		if err != nil {
			return nil, err
		}
		dims[i] = dim
	}

	results := make([]Result, len(dims))
	dimErrs := make([]error, len(dims))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, dim := range dims {
		g.Go(func() error {
			result, err := s.evaluateOne(gctx, pack, dim)
			if err != nil {
				dimErrs[i] = err
				if s.partial {
					// Record the failure but keep other dimensions running.
					return nil
				}
				return err
			}
			results[i] = *result
			return nil
		})
	}

	err := g.Wait()

	// Parent cancellation discards everything, partial or not.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if !s.partial {
		if err != nil {
			return nil, err
		}
		return results, nil
	}

	var succeeded []Result
	for i := range results {
		if dimErrs[i] == nil {
			succeeded = append(succeeded, results[i])
		}
	}
	if joined := errors.Join(dimErrs...); joined != nil {
		return succeeded, joined
	}
	return succeeded, nil
}

// evaluateOne runs a single dimension through the collaborator and builds
// its Result.
func (s *Session) evaluateOne(ctx context.Context, pack *evidence.Pack, dim rubric.Dimension) (*Result, error) {
	callCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	verdict, err := s.collab.EvaluateDimension(callCtx, CollabRequest{Pack: pack, Dimension: dim})
	elapsed := time.Since(start)
	s.metrics.ObserveCollaboratorLatency(dim.ID, elapsed)

	if err != nil {
		s.metrics.RecordFailure(dim.ID, "collaborator_unavailable")
		s.logger.Warn("collaborator call failed",
			"dimension", dim.ID,
			"elapsed", elapsed,
			"error", err)
		return nil, &CollaboratorError{Dimension: dim.ID, Err: err}
	}

	result, err := s.buildResult(pack, dim, verdict, elapsed)
	if err != nil {
		s.metrics.RecordFailure(dim.ID, "invalid_tier")
		return nil, err
	}

	s.metrics.RecordEvaluation(dim.ID, result.Outcome.String())
	s.logger.Debug("dimension evaluated",
		"dimension", dim.ID,
		"outcome", result.Outcome.String(),
		"citations", len(result.Evidence),
		"uncertain", result.Uncertain,
		"elapsed", elapsed)

	return result, nil
}

// buildResult validates the verdict, applies the conditionality rule, runs
// the plausibility guards, and resolves citations against the pack.
func (s *Session) buildResult(pack *evidence.Pack, dim rubric.Dimension, verdict *Verdict, elapsed time.Duration) (*Result, error) {
	tier, ok := rubric.ParseTierLabel(verdict.Tier)
	if !ok || !dim.HasTier(tier) {
		return nil, &InvalidTierError{Dimension: dim.ID, Tier: verdict.Tier}
	}

	citations := s.resolveCitations(pack, verdict)

	result := &Result{
		DimensionID:   dim.ID,
		DimensionName: dim.Name,
		Outcome:       Evidenced(tier),
		Rationale:     verdict.Rationale,
		Evidence:      citations,
		Uncertain:     verdict.Uncertain,
		Model:         verdict.Model,
		RequestID:     verdict.RequestID,
		Elapsed:       elapsed,
	}

	// Conditional dimensions: absent subject matter is evidence-neutral.
	// Either an explicit absence signal or the lowest tier with nothing
	// cited means "not evidenced", never a failing grade.
	if dim.Conditional {
		if verdict.SubjectAbsent || (tier == dim.LowestTier() && len(citations) == 0) {
			result.Outcome = NotEvidenced()
		}
	}

	// Guards only escalate uncertainty; the verdict stands as returned.
	if flagged := applyGuards(dim, result); flagged {
		result.Uncertain = true
	}

	return result, nil
}

// resolveCitations maps verdict evidence onto pack fragments. Unresolved
// quotes keep the claimed fragment id and are marked unresolved.
func (s *Session) resolveCitations(pack *evidence.Pack, verdict *Verdict) []evidence.Citation {
	citations := make([]evidence.Citation, 0, len(verdict.Evidence))
	for _, ev := range verdict.Evidence {
		polarity, ok := rubric.ParsePolarity(ev.Polarity)
		if !ok {
			polarity = rubric.PolarityPositive
		}

		id, resolved := evidence.Resolve(pack, ev.FragmentID, ev.Quote)
		if !resolved {
			s.logger.Debug("citation did not resolve",
				"claimed_fragment", ev.FragmentID,
				"quote", ev.Quote)
		}

		citations = append(citations, evidence.Citation{
			FragmentID: id,
			Quote:      ev.Quote,
			Polarity:   polarity,
			Resolved:   resolved,
		})
	}
	return citations
}
