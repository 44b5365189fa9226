package rubric_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/lrrit/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `---
id: D6
name: Avoidance of hindsight bias and counterfactual certainty
conditional: false
capability: judging
---

# Purpose

Counterfactual reasoning is avoided when the report focuses on what actually
happened and does not reason from imagined alternatives.

## Tiers

- GOOD: cautious counterfactual reasoning with explicit uncertainty
- SOME: mixed cautious and overconfident counterfactual reasoning
- LITTLE: strong hindsight bias or definitive unsupported causal claims

## Cues

positive: cannot determine, unclear whether, we cannot know
negative: would have, definitely, inevitably

## Constraints

- Base the judgement only on the evidence provided.
`

func TestParseDocument(t *testing.T) {
	dim, err := rubric.ParseDocument("d6.md", []byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "D6", dim.ID)
	assert.Equal(t, "Avoidance of hindsight bias and counterfactual certainty", dim.Name)
	assert.Equal(t, "judging", dim.Capability)
	assert.False(t, dim.Conditional)
	assert.Contains(t, dim.Purpose, "Counterfactual reasoning is avoided")

	require.Len(t, dim.Tiers, 3)
	assert.Equal(t, rubric.TierGood, dim.Tiers[0].Label)
	assert.Equal(t, "cautious counterfactual reasoning with explicit uncertainty", dim.Tiers[0].Criteria)
	assert.Equal(t, rubric.TierLittle, dim.Tiers[2].Label)

	assert.Equal(t, []string{"cannot determine", "unclear whether", "we cannot know"}, dim.PositiveCues)
	assert.Equal(t, []string{"would have", "definitely", "inevitably"}, dim.NegativeCues)
	assert.Equal(t, []string{"Base the judgement only on the evidence provided."}, dim.Constraints)
}

func TestParseDocumentConditionalFlag(t *testing.T) {
	doc := `---
id: D7
name: Improvement actions
conditional: true
---

# Purpose
Safety actions are systems-focused and developed collaboratively.

## Tiers
- GOOD: strong actions
- LITTLE: weak actions
`
	dim, err := rubric.ParseDocument("d7.md", []byte(doc))
	require.NoError(t, err)
	assert.True(t, dim.Conditional)
	require.Len(t, dim.Tiers, 2)
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no frontmatter",
			doc:  "# Purpose\nSome purpose.\n\n## Tiers\n- GOOD: x\n",
		},
		{
			name: "missing id",
			doc:  "---\nname: No id\n---\n\n# Purpose\nText.\n\n## Tiers\n- GOOD: x\n",
		},
		{
			name: "missing purpose",
			doc:  "---\nid: D1\n---\n\n## Tiers\n- GOOD: x\n",
		},
		{
			name: "missing tiers",
			doc:  "---\nid: D1\n---\n\n# Purpose\nText.\n",
		},
		{
			name: "unknown tier label",
			doc:  "---\nid: D1\n---\n\n# Purpose\nText.\n\n## Tiers\n- EXCELLENT: x\n",
		},
		{
			name: "tier item without criteria separator",
			doc:  "---\nid: D1\n---\n\n# Purpose\nText.\n\n## Tiers\n- GOOD criteria without colon\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rubric.ParseDocument(tt.name, []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, rubric.IsMalformedDimension(err))
		})
	}
}

func TestLoadAndDiscover(t *testing.T) {
	dir := t.TempDir()

	write := func(name, doc string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		return path
	}

	d1 := write("d1.md", "---\nid: D1\n---\n\n# Purpose\nCompassion.\n\n## Tiers\n- GOOD: strong\n- LITTLE: weak\n")
	write("d2.md", "---\nid: D2\n---\n\n# Purpose\nSystems.\n\n## Tiers\n- GOOD: strong\n- LITTLE: weak\n")
	write("notes.txt", "not a rubric document")

	reg, err := rubric.Load(d1)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	reg, err = rubric.Discover(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2"}, reg.IDs())
}

func TestDiscoverEmptyDir(t *testing.T) {
	_, err := rubric.Discover(t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rubric documents")
}
