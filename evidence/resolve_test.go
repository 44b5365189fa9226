package evidence_test

import (
	"testing"
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPack() *evidence.Pack {
	return &evidence.Pack{
		ReportID:    "report-001",
		Title:       "Learning response",
		RetrievedAt: time.Now(),
		Fragments: []evidence.Fragment{
			{ID: "c01", Section: "What happened", Content: "The patient was transferred to the ward at 03:00. Staffing on the ward was below planned levels."},
			{ID: "c02", Section: "Analysis", Content: "It is unclear whether an earlier review would have changed the outcome. We cannot know what information was available."},
			{ID: "c03", Section: "Actions", Content: "The escalation pathway will be co-developed with ward staff, with a named owner and monthly audit."},
		},
	}
}

func TestPackValidate(t *testing.T) {
	pack := testPack()
	require.NoError(t, pack.Validate())

	empty := &evidence.Pack{ReportID: "r"}
	assert.Error(t, empty.Validate())

	noID := &evidence.Pack{Fragments: []evidence.Fragment{{ID: "c01", Content: "x"}}}
	assert.Error(t, noID.Validate())

	dup := testPack()
	dup.Fragments = append(dup.Fragments, evidence.Fragment{ID: "c01", Content: "again"})
	assert.Error(t, dup.Validate())
}

func TestPackText(t *testing.T) {
	pack := testPack()
	text := pack.Text()
	assert.Contains(t, text, "transferred to the ward")
	assert.Contains(t, text, "escalation pathway")
}

func TestResolveFastPath(t *testing.T) {
	pack := testPack()

	id, ok := evidence.Resolve(pack, "c02", "It is unclear whether an earlier review would have changed the outcome.")
	assert.True(t, ok)
	assert.Equal(t, "c02", id)

	// Empty quote with a valid id resolves by id alone.
	id, ok = evidence.Resolve(pack, "c01", "")
	assert.True(t, ok)
	assert.Equal(t, "c01", id)
}

func TestResolveRepairsMisattributedID(t *testing.T) {
	pack := testPack()

	// Quote is from c03 but the collaborator claimed c01.
	id, ok := evidence.Resolve(pack, "c01", "co-developed with ward staff")
	assert.True(t, ok)
	assert.Equal(t, "c03", id)
}

func TestResolveToleratesExtractionNoise(t *testing.T) {
	pack := testPack()
	pack.Fragments[1].Content = "It is unclear whether an ear-\nlier review “would have” changed the outcome."

	id, ok := evidence.Resolve(pack, "", `it is unclear whether an earlier review "would have" changed the outcome`)
	assert.True(t, ok)
	assert.Equal(t, "c02", id)
}

func TestResolveUnresolvableQuote(t *testing.T) {
	pack := testPack()

	id, ok := evidence.Resolve(pack, "c07", "this text appears nowhere in the document body whatsoever")
	assert.False(t, ok)
	assert.Equal(t, "c07", id) // claimed id is preserved
}

func TestResolveEmptyQuoteUnknownID(t *testing.T) {
	pack := testPack()

	_, ok := evidence.Resolve(pack, "c99", "")
	assert.False(t, ok)
}
