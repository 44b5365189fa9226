package review_test

import (
	"context"
	"strings"
	"testing"

	"github.com/c360studio/lrrit/llm"
	_ "github.com/c360studio/lrrit/llm/providers"
	"github.com/c360studio/lrrit/llm/testutil"
	"github.com/c360studio/lrrit/model"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func judgeClient(url string) *llm.Client {
	registry := model.NewRegistry(nil, nil)
	registry.SetCapability(model.CapabilityJudging, &model.CapabilityConfig{Preferred: []string{"judge-model"}})
	registry.SetEndpoint("judge-model", &model.EndpointConfig{
		Provider: "ollama", URL: url, Model: "judge-model",
	})
	return llm.NewClient(registry)
}

func TestJudgeParsesVerdict(t *testing.T) {
	server := testutil.NewMockServer("```json\n" + `{
  "rating": "SOME",
  "rationale": "causes named but not traced to conditions",
  "evidence": [
    {"id": "c01", "quote": "the connection pool was exhausted", "evidence_type": "negative"}
  ],
  "subject_absent": false,
  "uncertainty": true
}` + "\n```")
	defer server.Close()

	judge := review.NewJudge(judgeClient(server.URL))
	registry := rubric.DefaultRegistry()
	dim, err := registry.Get("D1")
	require.NoError(t, err)

	verdict, err := judge.EvaluateDimension(context.Background(), review.CollabRequest{
		Pack:      testPack(),
		Dimension: dim,
	})
	require.NoError(t, err)
	assert.Equal(t, "SOME", verdict.Tier)
	assert.True(t, verdict.Uncertain)
	assert.False(t, verdict.SubjectAbsent)
	require.Len(t, verdict.Evidence, 1)
	assert.Equal(t, "c01", verdict.Evidence[0].FragmentID)
	assert.Equal(t, "negative", verdict.Evidence[0].Polarity)
	assert.NotEmpty(t, verdict.RequestID)
}

func TestJudgePromptContainsRubricAndFragments(t *testing.T) {
	server := testutil.NewMockServer(`{"rating": "GOOD", "rationale": "ok", "evidence": []}`)
	defer server.Close()

	judge := review.NewJudge(judgeClient(server.URL))
	registry := rubric.DefaultRegistry()
	dim, err := registry.Get("D7")
	require.NoError(t, err)

	_, err = judge.EvaluateDimension(context.Background(), review.CollabRequest{
		Pack:      testPack(),
		Dimension: dim,
	})
	require.NoError(t, err)

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 2)

	system := reqs[0].Messages[0].Content
	assert.Contains(t, system, "D7")
	assert.Contains(t, system, "GOOD")
	assert.Contains(t, system, "subject_absent")

	user := reqs[0].Messages[1].Content
	assert.Contains(t, user, "[c01]")
	assert.Contains(t, user, "[c03]")
	assert.True(t, strings.Contains(user, "pool saturation alerts"))
}

func TestJudgeRejectsNonJSONResponse(t *testing.T) {
	server := testutil.NewMockServer("I refuse to answer in JSON.")
	defer server.Close()

	judge := review.NewJudge(judgeClient(server.URL))
	registry := rubric.DefaultRegistry()
	dim, err := registry.Get("D1")
	require.NoError(t, err)

	_, err = judge.EvaluateDimension(context.Background(), review.CollabRequest{
		Pack:      testPack(),
		Dimension: dim,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not JSON")
}
