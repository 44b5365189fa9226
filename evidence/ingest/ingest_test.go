package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/lrrit/evidence/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySelectsByExtension(t *testing.T) {
	reg := ingest.NewRegistry()

	tests := []struct {
		filename string
		mimeType string
	}{
		{"report.md", "text/markdown"},
		{"report.markdown", "text/markdown"},
		{"report.txt", "text/plain"},
		{"report.html", "text/html"},
		{"report.htm", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p := reg.GetByExtension(tt.filename)
			require.NotNil(t, p)
			assert.True(t, p.CanParse(tt.mimeType))
		})
	}

	assert.Nil(t, reg.GetByExtension("report.xlsx"))
}

func TestMarkdownParserFrontmatterTitle(t *testing.T) {
	doc, err := (&ingest.MarkdownParser{}).Parse("r.md", []byte("---\ntitle: Ward transfer review\n---\n\nBody text here.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Ward transfer review", doc.Title)
	assert.Equal(t, "Body text here.\n", doc.Body)
}

func TestMarkdownParserHeadingTitle(t *testing.T) {
	doc, err := (&ingest.MarkdownParser{}).Parse("r.md", []byte("# Incident summary\n\nDetails.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Incident summary", doc.Title)
}

func TestHTMLParser(t *testing.T) {
	page := `<html><head><title>Review page</title></head><body>
<nav>skip me</nav>
<h1>What happened</h1>
<p>The patient was transferred overnight.</p>
<script>alert("noise")</script>
</body></html>`

	doc, err := ingest.NewHTMLParser().Parse("r.html", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Review page", doc.Title)
	assert.Contains(t, doc.Body, "What happened")
	assert.Contains(t, doc.Body, "transferred overnight")
	assert.NotContains(t, doc.Body, "skip me")
	assert.NotContains(t, doc.Body, "alert")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Ward Transfer Review.md")
	content := "# Ward transfer review\n\nThe patient was transferred to the ward at 03:00.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pack, err := ingest.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ward-transfer-review", pack.ReportID)
	assert.Equal(t, "Ward transfer review", pack.Title)
	assert.Equal(t, path, pack.Source)
	require.NotEmpty(t, pack.Fragments)
	assert.Equal(t, "c01", pack.Fragments[0].ID)
	assert.False(t, pack.RetrievedAt.IsZero())
}

func TestBuildRejectsEmptyBody(t *testing.T) {
	_, err := ingest.Build("r", "title", "src", "")
	require.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "ward-transfer-review", ingest.Slug("Ward Transfer Review"))
	assert.Equal(t, "r-2024-01", ingest.Slug("r_2024/01"))
	assert.Equal(t, "abc", ingest.Slug("--abc--"))
}
