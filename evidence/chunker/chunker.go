// Package chunker splits report text into evidence fragments sized for
// collaborator prompts.
package chunker

import (
	"fmt"
	"strings"

	"github.com/c360studio/lrrit/evidence"
)

// charsPerToken is the approximate average characters per token.
const charsPerToken = 4

// Config holds fragmenting configuration.
type Config struct {
	// TargetTokens is the ideal fragment size in tokens.
	TargetTokens int

	// MaxTokens is the maximum fragment size.
	MaxTokens int

	// MinTokens is the minimum fragment size (smaller fragments are merged).
	MinTokens int
}

// DefaultConfig returns sensible fragmenting defaults.
func DefaultConfig() Config {
	return Config{
		TargetTokens: 800,
		MaxTokens:    1200,
		MinTokens:    150,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MinTokens <= 0 || c.TargetTokens <= 0 || c.MaxTokens <= 0 {
		return fmt.Errorf("token limits must be positive")
	}
	if c.MinTokens >= c.TargetTokens {
		return fmt.Errorf("MinTokens (%d) must be less than TargetTokens (%d)", c.MinTokens, c.TargetTokens)
	}
	if c.TargetTokens > c.MaxTokens {
		return fmt.Errorf("TargetTokens (%d) must not exceed MaxTokens (%d)", c.TargetTokens, c.MaxTokens)
	}
	return nil
}

// Chunker splits document bodies into fragments.
type Chunker struct {
	config Config
}

// New creates a Chunker, falling back to defaults for a zero config.
func New(cfg Config) (*Chunker, error) {
	if cfg.TargetTokens == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: cfg}, nil
}

// NewDefault creates a Chunker with default configuration.
func NewDefault() *Chunker {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return c
}

// Chunk splits a markdown body into fragments with stable sequential ids.
func (c *Chunker) Chunk(body string) []evidence.Fragment {
	var fragments []evidence.Fragment
	var current evidence.Fragment

	flush := func() {
		if strings.TrimSpace(current.Content) == "" {
			return
		}
		current.TokenCount = estimateTokens(current.Content)
		fragments = append(fragments, current)
		current = evidence.Fragment{}
	}

	for _, sec := range parseSections(body) {
		secTokens := estimateTokens(sec.content)

		if secTokens > c.config.MaxTokens {
			flush()
			for _, part := range c.splitLargeSection(sec) {
				fragments = append(fragments, part)
			}
			continue
		}

		if estimateTokens(current.Content) > 0 &&
			estimateTokens(current.Content)+secTokens > c.config.TargetTokens {
			flush()
		}

		if current.Section == "" {
			current.Section = sec.heading
		}
		if current.Content != "" {
			current.Content += "\n\n"
		}
		current.Content += sec.content
	}
	flush()

	fragments = c.mergeSmall(fragments)

	for i := range fragments {
		fragments[i].ID = fmt.Sprintf("c%02d", i+1)
	}
	return fragments
}

// section is a heading plus its text.
type section struct {
	heading string
	content string
}

// parseSections splits markdown on headings, keeping code fences intact.
func parseSections(body string) []section {
	var sections []section
	var current section
	inCodeBlock := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && strings.HasPrefix(trimmed, "#") {
			if strings.TrimSpace(current.content) != "" {
				sections = append(sections, current)
			}
			current = section{
				heading: strings.TrimSpace(strings.TrimLeft(trimmed, "#")),
				content: line,
			}
			continue
		}

		if current.content != "" {
			current.content += "\n"
		}
		current.content += line
	}
	if strings.TrimSpace(current.content) != "" {
		sections = append(sections, current)
	}

	return sections
}

// splitLargeSection breaks an oversized section at paragraph boundaries,
// with a character-level hard split as a last resort.
func (c *Chunker) splitLargeSection(sec section) []evidence.Fragment {
	var fragments []evidence.Fragment
	var current evidence.Fragment
	current.Section = sec.heading

	flush := func() {
		if strings.TrimSpace(current.Content) == "" {
			return
		}
		current.TokenCount = estimateTokens(current.Content)
		fragments = append(fragments, current)
		current = evidence.Fragment{Section: sec.heading}
	}

	for _, para := range splitParagraphs(sec.content) {
		paraTokens := estimateTokens(para)

		if paraTokens > c.config.MaxTokens {
			flush()
			fragments = append(fragments, c.hardSplit(sec.heading, para)...)
			continue
		}

		if estimateTokens(current.Content) > 0 &&
			estimateTokens(current.Content)+paraTokens > c.config.TargetTokens {
			flush()
		}

		if current.Content != "" {
			current.Content += "\n\n"
		}
		current.Content += para
	}
	flush()

	return fragments
}

// splitParagraphs splits on blank lines outside code fences.
func splitParagraphs(content string) []string {
	var paragraphs []string
	var current strings.Builder
	inCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && trimmed == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
				current.Reset()
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
	}

	return paragraphs
}

// hardSplit cuts content at rune boundaries so MaxTokens is never exceeded.
func (c *Chunker) hardSplit(heading, content string) []evidence.Fragment {
	var fragments []evidence.Fragment
	maxChars := c.config.MaxTokens * charsPerToken

	runes := []rune(content)
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		part := string(runes[i:end])
		fragments = append(fragments, evidence.Fragment{
			Section:    heading,
			Content:    part,
			TokenCount: estimateTokens(part),
		})
	}
	return fragments
}

// mergeSmall folds undersized fragments into their successor.
func (c *Chunker) mergeSmall(fragments []evidence.Fragment) []evidence.Fragment {
	if len(fragments) <= 1 {
		return fragments
	}

	var result []evidence.Fragment
	for i := 0; i < len(fragments); i++ {
		frag := fragments[i]

		if frag.TokenCount < c.config.MinTokens && i < len(fragments)-1 {
			combined := frag.Content + "\n\n" + fragments[i+1].Content
			if estimateTokens(combined) <= c.config.MaxTokens {
				fragments[i+1] = evidence.Fragment{
					Section:    frag.Section,
					Content:    combined,
					TokenCount: estimateTokens(combined),
				}
				continue
			}
		}
		result = append(result, frag)
	}
	return result
}

// estimateTokens uses the chars/token heuristic.
func estimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (len(content) + charsPerToken - 1) / charsPerToken
}
