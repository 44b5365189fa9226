package review_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testPack() *evidence.Pack {
	return &evidence.Pack{
		ReportID: "incident-2026-03",
		Title:    "Payment outage retrospective",
		Fragments: []evidence.Fragment{
			{ID: "c01", Section: "Summary", Content: "The payment service failed because the connection pool was exhausted during the traffic spike.", TokenCount: 18},
			{ID: "c02", Section: "Timeline", Content: "Alerting fired eleven minutes after the first customer impact was reported.", TokenCount: 13},
			{ID: "c03", Section: "Actions", Content: "We will add pool saturation alerts and review retry budgets across services.", TokenCount: 13},
		},
	}
}

// okCollaborator returns a fixed verdict for every dimension.
func okCollaborator(tier string) review.CollaboratorFunc {
	return func(_ context.Context, req review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      tier,
			Rationale: "evidence present",
			Evidence: []review.VerdictEvidence{
				{FragmentID: "c01", Quote: "the connection pool was exhausted", Polarity: "positive"},
			},
		}, nil
	}
}

func TestEvaluateOrdersResultsByRequest(t *testing.T) {
	session := review.NewSession(rubric.DefaultRegistry(), okCollaborator("SOME"))

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D3", "D1", "D6"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "D3", results[0].DimensionID)
	assert.Equal(t, "D1", results[1].DimensionID)
	assert.Equal(t, "D6", results[2].DimensionID)
	for _, r := range results {
		assert.Equal(t, review.OutcomeEvidenced, r.Outcome.Kind)
		assert.Equal(t, rubric.TierSome, r.Outcome.Tier)
	}
}

func TestEvaluateEmptyIDsMeansAll(t *testing.T) {
	registry := rubric.DefaultRegistry()
	session := review.NewSession(registry, okCollaborator("GOOD"))

	results, err := session.Evaluate(context.Background(), testPack(), nil)
	require.NoError(t, err)
	assert.Len(t, results, registry.Len())
}

func TestEvaluateUnknownDimensionFailsBeforeAnyCall(t *testing.T) {
	var calls atomic.Int64
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		calls.Add(1)
		return nil, errors.New("should not be called")
	})

	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D99"})
	require.ErrorIs(t, err, rubric.ErrUnknownDimension)
	assert.Nil(t, results)
	assert.Zero(t, calls.Load())
}

func TestEvaluateRejectsDuplicateDimensions(t *testing.T) {
	session := review.NewSession(rubric.DefaultRegistry(), okCollaborator("GOOD"))

	_, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D2", "D1"})
	require.ErrorIs(t, err, review.ErrDuplicateDimension)
	assert.Contains(t, err.Error(), "D1")
}

func TestEvaluateInvalidTier(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{Tier: "EXCELLENT"}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	_, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.Error(t, err)
	var tierErr *review.InvalidTierError
	require.ErrorAs(t, err, &tierErr)
	assert.Equal(t, "D1", tierErr.Dimension)
	assert.Equal(t, "EXCELLENT", tierErr.Tier)
}

func TestEvaluateTimeoutSurfacesAsCollaboratorError(t *testing.T) {
	slow := review.CollaboratorFunc(func(ctx context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &review.Verdict{Tier: "GOOD"}, nil
		}
	})

	session := review.NewSession(rubric.DefaultRegistry(), slow,
		review.WithTimeout(20*time.Millisecond))

	_, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.Error(t, err)
	assert.True(t, review.IsCollaboratorUnavailable(err))
}

func TestEvaluatePartialResults(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, req review.CollabRequest) (*review.Verdict, error) {
		if req.Dimension.ID == "D2" {
			return nil, errors.New("judge offline")
		}
		return okCollaborator("SOME")(context.Background(), req)
	})

	session := review.NewSession(rubric.DefaultRegistry(), collab,
		review.WithPartialResults(true))

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D2", "D3"})
	require.Error(t, err)
	assert.True(t, review.IsCollaboratorUnavailable(err))
	assert.Contains(t, err.Error(), "D2")

	require.Len(t, results, 2)
	assert.Equal(t, "D1", results[0].DimensionID)
	assert.Equal(t, "D3", results[1].DimensionID)
}

func TestEvaluateFirstFailureWithoutPartial(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, req review.CollabRequest) (*review.Verdict, error) {
		if req.Dimension.ID == "D2" {
			return nil, errors.New("judge offline")
		}
		return okCollaborator("SOME")(context.Background(), req)
	})

	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D2", "D3"})
	require.Error(t, err)
	assert.True(t, review.IsCollaboratorUnavailable(err))
	assert.Nil(t, results)
}

func TestEvaluateCancellationDiscardsResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	var once sync.Once
	collab := review.CollaboratorFunc(func(ctx context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return nil, ctx.Err()
	})

	session := review.NewSession(rubric.DefaultRegistry(), collab,
		review.WithPartialResults(true))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	results, err := session.Evaluate(ctx, testPack(), []string{"D1", "D2"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestEvaluateConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, maxInFlight atomic.Int64
	collab := review.CollaboratorFunc(func(_ context.Context, req review.CollabRequest) (*review.Verdict, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return okCollaborator("GOOD")(context.Background(), req)
	})

	session := review.NewSession(rubric.DefaultRegistry(), collab,
		review.WithConcurrency(2))

	_, err := session.Evaluate(context.Background(), testPack(), nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, maxInFlight.Load(), int64(2))
}

func TestEvaluateIdempotentWithDeterministicCollaborator(t *testing.T) {
	session := review.NewSession(rubric.DefaultRegistry(), okCollaborator("SOME"))

	first, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D4"})
	require.NoError(t, err)
	second, err := session.Evaluate(context.Background(), testPack(), []string{"D1", "D4"})
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].DimensionID, second[i].DimensionID)
		assert.Equal(t, first[i].Outcome, second[i].Outcome)
		assert.Equal(t, first[i].Rationale, second[i].Rationale)
		assert.Equal(t, first[i].Evidence, second[i].Evidence)
		assert.Equal(t, first[i].Uncertain, second[i].Uncertain)
	}
}

func TestConditionalAbsentSubjectIsNotEvidenced(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:          "LITTLE",
			Rationale:     "the document contains no improvement actions",
			SubjectAbsent: true,
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D7"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, review.OutcomeNotEvidenced, results[0].Outcome.Kind)
	assert.Empty(t, results[0].Outcome.Tier)
	assert.Equal(t, "NOT_EVIDENCED", results[0].Outcome.String())
}

func TestConditionalLowestTierWithNoEvidenceIsNotEvidenced(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{Tier: "LITTLE", Rationale: "no actions found"}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D7"})
	require.NoError(t, err)
	assert.Equal(t, review.OutcomeNotEvidenced, results[0].Outcome.Kind)
}

func TestNonConditionalLowestTierKeepsGrade(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{Tier: "LITTLE", Rationale: "no causal analysis"}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.NoError(t, err)
	assert.Equal(t, review.OutcomeEvidenced, results[0].Outcome.Kind)
	assert.Equal(t, rubric.TierLittle, results[0].Outcome.Tier)
	// A graded verdict with no citations is kept but flagged.
	assert.True(t, results[0].Uncertain)
}

func TestConditionalLowestTierWithEvidenceKeepsGrade(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      "LITTLE",
			Rationale: "actions are listed but unowned and undated",
			Evidence: []review.VerdictEvidence{
				{FragmentID: "c03", Quote: "We will add pool saturation alerts", Polarity: "negative"},
			},
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D7"})
	require.NoError(t, err)
	assert.Equal(t, review.OutcomeEvidenced, results[0].Outcome.Kind)
	assert.Equal(t, rubric.TierLittle, results[0].Outcome.Tier)
}

func TestCounterfactualDocumentGradedLittle(t *testing.T) {
	pack := &evidence.Pack{
		ReportID: "incident-2026-05",
		Title:    "Regional failover writeup",
		Fragments: []evidence.Fragment{
			{ID: "c01", Content: "If the operator had noticed the alert sooner, the outage would have been avoided.", TokenCount: 15},
		},
	}

	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      "LITTLE",
			Rationale: "hindsight bias: the writeup substitutes counterfactuals for analysis of conditions",
			Evidence: []review.VerdictEvidence{
				{FragmentID: "c01", Quote: "If the operator had noticed the alert sooner", Polarity: "negative"},
			},
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), pack, []string{"D6"})
	require.NoError(t, err)
	assert.Equal(t, rubric.TierLittle, results[0].Outcome.Tier)
	assert.Contains(t, results[0].Rationale, "hindsight")
	assert.True(t, results[0].Evidence[0].Resolved)
}

func TestGuardsEscalateUncertaintyOnly(t *testing.T) {
	// GOOD with only a negative citation: tier stands, uncertainty raised.
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      "GOOD",
			Rationale: "strong analysis",
			Evidence: []review.VerdictEvidence{
				{FragmentID: "c02", Quote: "Alerting fired eleven minutes after", Polarity: "negative"},
			},
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.NoError(t, err)
	assert.Equal(t, rubric.TierGood, results[0].Outcome.Tier)
	assert.True(t, results[0].Uncertain)
}

func TestUnresolvedCitationKeepsClaimedIDAndEscalates(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      "SOME",
			Rationale: "partial",
			Evidence: []review.VerdictEvidence{
				{FragmentID: "c02", Quote: "this sentence appears nowhere in the document", Polarity: "positive"},
			},
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.NoError(t, err)
	require.Len(t, results[0].Evidence, 1)
	assert.Equal(t, "c02", results[0].Evidence[0].FragmentID)
	assert.False(t, results[0].Evidence[0].Resolved)
	assert.True(t, results[0].Uncertain)
}

func TestCitationResolutionRepairsMisattributedID(t *testing.T) {
	collab := review.CollaboratorFunc(func(_ context.Context, _ review.CollabRequest) (*review.Verdict, error) {
		return &review.Verdict{
			Tier:      "SOME",
			Rationale: "partial",
			Evidence: []review.VerdictEvidence{
				// Quote is from c02 but the collaborator claimed c01.
				{FragmentID: "c01", Quote: "Alerting fired eleven minutes after the first customer impact", Polarity: "negative"},
			},
		}, nil
	})
	session := review.NewSession(rubric.DefaultRegistry(), collab)

	results, err := session.Evaluate(context.Background(), testPack(), []string{"D1"})
	require.NoError(t, err)
	require.Len(t, results[0].Evidence, 1)
	assert.Equal(t, "c02", results[0].Evidence[0].FragmentID)
	assert.True(t, results[0].Evidence[0].Resolved)
}
