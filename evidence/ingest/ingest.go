// Package ingest turns report files and URLs into evidence packs.
// Parsers are selected by MIME type with extension sniffing; parsed bodies
// are fragmented by the chunker.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/evidence/chunker"
	"gopkg.in/yaml.v3"
)

// Document is the parsed intermediate form of a report: a title plus a
// markdown body ready for fragmenting.
type Document struct {
	Title string
	Body  string
}

// Parser converts raw file content into a Document.
type Parser interface {
	// Parse parses a document body.
	Parse(filename string, content []byte) (*Document, error)

	// CanParse returns true if this parser handles the given MIME type.
	CanParse(mimeType string) bool

	// MimeType returns the primary MIME type for this parser.
	MimeType() string
}

// Registry manages document parsers keyed by primary MIME type.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry creates a registry with the default parsers: markdown, plain
// text, and HTML.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register(&MarkdownParser{})
	r.Register(&PlainTextParser{})
	r.Register(NewHTMLParser())
	return r
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.MimeType()] = p
}

// GetByMimeType returns a parser for the given MIME type, or nil.
func (r *Registry) GetByMimeType(mimeType string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[mimeType]; ok {
		return p
	}
	for _, p := range r.parsers {
		if p.CanParse(mimeType) {
			return p
		}
	}
	return nil
}

// GetByExtension returns a parser for a file based on its extension.
func (r *Registry) GetByExtension(filename string) Parser {
	return r.GetByMimeType(MimeTypeFromExtension(filepath.Ext(filename)))
}

// Parse parses file content using the parser matching its extension.
func (r *Registry) Parse(filename string, content []byte) (*Document, error) {
	p := r.GetByExtension(filename)
	if p == nil {
		return nil, fmt.Errorf("no parser for file type: %s", filepath.Ext(filename))
	}
	return p.Parse(filename, content)
}

// MimeTypeFromExtension returns the MIME type for a file extension.
func MimeTypeFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// MarkdownParser parses markdown documents with optional YAML frontmatter.
// A frontmatter "title" key or the first H1 becomes the document title.
type MarkdownParser struct{}

// Parse implements Parser.
func (p *MarkdownParser) Parse(_ string, content []byte) (*Document, error) {
	body := string(content)
	title := ""

	if strings.HasPrefix(body, "---\n") || strings.HasPrefix(body, "---\r\n") {
		start := strings.Index(body, "\n") + 1
		if closeIdx := strings.Index(body[start:], "\n---"); closeIdx != -1 {
			var fm struct {
				Title string `yaml:"title"`
			}
			if err := yaml.Unmarshal([]byte(body[start:start+closeIdx]), &fm); err == nil {
				title = fm.Title
				body = strings.TrimLeft(body[start+closeIdx+len("\n---"):], "\r\n")
			}
		}
	}

	if title == "" {
		title = firstHeading(body)
	}
	return &Document{Title: title, Body: body}, nil
}

// CanParse implements Parser.
func (p *MarkdownParser) CanParse(mimeType string) bool {
	return mimeType == "text/markdown" || mimeType == "text/x-markdown"
}

// MimeType implements Parser.
func (p *MarkdownParser) MimeType() string { return "text/markdown" }

// PlainTextParser treats the whole file as the body.
type PlainTextParser struct{}

// Parse implements Parser.
func (p *PlainTextParser) Parse(_ string, content []byte) (*Document, error) {
	return &Document{Body: string(content)}, nil
}

// CanParse implements Parser.
func (p *PlainTextParser) CanParse(mimeType string) bool {
	return mimeType == "text/plain"
}

// MimeType implements Parser.
func (p *PlainTextParser) MimeType() string { return "text/plain" }

// HTMLParser converts HTML to markdown before fragmenting.
type HTMLParser struct {
	converter *Converter
}

// NewHTMLParser creates an HTML parser backed by the markdown converter.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{converter: NewConverter()}
}

// Parse implements Parser.
func (p *HTMLParser) Parse(_ string, content []byte) (*Document, error) {
	result, err := p.converter.Convert(content)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	return &Document{Title: result.Title, Body: result.Markdown}, nil
}

// CanParse implements Parser.
func (p *HTMLParser) CanParse(mimeType string) bool {
	return mimeType == "text/html"
}

// MimeType implements Parser.
func (p *HTMLParser) MimeType() string { return "text/html" }

// firstHeading extracts the first H1 from markdown.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Build fragments a body and assembles an evidence pack.
func Build(reportID, title, source, body string) (*evidence.Pack, error) {
	fragments := chunker.NewDefault().Chunk(body)

	pack := &evidence.Pack{
		ReportID:    reportID,
		Title:       title,
		Source:      source,
		RetrievedAt: time.Now().UTC(),
		Fragments:   fragments,
	}
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	return pack, nil
}

// LoadFile reads and parses a report file into an evidence pack.
// The report id is a slug of the base filename.
func LoadFile(path string) (*evidence.Pack, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	doc, err := NewRegistry().Parse(path, content)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	reportID := Slug(strings.TrimSuffix(base, filepath.Ext(base)))
	title := doc.Title
	if title == "" {
		title = base
	}
	return Build(reportID, title, path, doc.Body)
}

// Slug normalizes a name into a lowercase hyphenated identifier.
func Slug(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
