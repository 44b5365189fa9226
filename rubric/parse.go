package rubric

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter holds the YAML header of a dimension document.
type frontmatter struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Conditional bool   `yaml:"conditional"`
	Capability  string `yaml:"capability"`
}

// ParseDocument parses a dimension definition from a markdown document with
// YAML frontmatter. The body is scanned for Purpose, Tiers, Cues, and
// Constraints sections:
//
//	---
//	id: D6
//	name: Avoidance of hindsight bias
//	---
//
//	# Purpose
//	<prose>
//
//	## Tiers
//	- GOOD: <criteria>
//	- SOME: <criteria>
//	- LITTLE: <criteria>
//
//	## Cues
//	positive: cue, cue
//	negative: cue, cue
//
//	## Constraints
//	- <free text>
//
// source identifies the document in errors (typically a file path).
func ParseDocument(source string, content []byte) (Dimension, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return Dimension{}, &MalformedDimensionError{Source: source, Reason: "invalid frontmatter", Err: err}
	}
	if fm.ID == "" {
		return Dimension{}, &MalformedDimensionError{Source: source, Reason: "frontmatter is missing an id"}
	}

	dim := Dimension{
		ID:          fm.ID,
		Name:        fm.Name,
		Conditional: fm.Conditional,
		Capability:  fm.Capability,
	}

	for _, sec := range scanSections(body) {
		switch strings.ToLower(sec.heading) {
		case "purpose":
			dim.Purpose = strings.TrimSpace(sec.body)
		case "tiers":
			tiers, err := parseTiers(sec.body)
			if err != nil {
				return Dimension{}, &MalformedDimensionError{Source: source, Reason: "invalid tiers section", Err: err}
			}
			dim.Tiers = tiers
		case "cues":
			dim.PositiveCues, dim.NegativeCues = parseCues(sec.body)
		case "constraints":
			dim.Constraints = parseListItems(sec.body)
		}
	}

	if dim.Purpose == "" {
		return Dimension{}, &MalformedDimensionError{Source: source, Reason: "document lacks a Purpose section"}
	}
	if len(dim.Tiers) == 0 {
		return Dimension{}, &MalformedDimensionError{Source: source, Reason: "document lacks evidence tiers"}
	}
	if err := dim.Validate(); err != nil {
		return Dimension{}, &MalformedDimensionError{Source: source, Reason: "validation failed", Err: err}
	}

	return dim, nil
}

// splitFrontmatter separates the YAML frontmatter from the markdown body.
func splitFrontmatter(content string) (frontmatter, string, error) {
	var fm frontmatter

	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return fm, content, fmt.Errorf("document has no frontmatter")
	}

	start := strings.Index(content, "\n") + 1
	closeIdx := strings.Index(content[start:], "\n---")
	if closeIdx == -1 {
		return fm, content, fmt.Errorf("no closing frontmatter delimiter")
	}

	yamlContent := content[start : start+closeIdx]
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return fm, content, fmt.Errorf("parse YAML frontmatter: %w", err)
	}

	body := content[start+closeIdx+len("\n---"):]
	body = strings.TrimLeft(body, "\r\n")
	return fm, body, nil
}

// section is a heading plus the text until the next heading.
type section struct {
	heading string
	body    string
}

// scanSections splits a markdown body on headings of any level.
func scanSections(body string) []section {
	var sections []section
	var current section
	inCodeBlock := false

	flush := func() {
		if current.heading != "" || strings.TrimSpace(current.body) != "" {
			current.body = strings.TrimSpace(current.body)
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && strings.HasPrefix(trimmed, "#") {
			flush()
			current = section{heading: strings.TrimSpace(strings.TrimLeft(trimmed, "#"))}
			continue
		}

		if current.body != "" {
			current.body += "\n"
		}
		current.body += line
	}
	flush()

	return sections
}

// parseTiers parses "- LABEL: criteria" list items.
func parseTiers(body string) ([]Tier, error) {
	var tiers []Tier
	for _, item := range parseListItems(body) {
		label, criteria, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("tier item %q is not in LABEL: criteria form", item)
		}
		tierLabel, ok := ParseTierLabel(strings.TrimSpace(label))
		if !ok {
			return nil, fmt.Errorf("unknown tier label %q", strings.TrimSpace(label))
		}
		tiers = append(tiers, Tier{Label: tierLabel, Criteria: strings.TrimSpace(criteria)})
	}
	return tiers, nil
}

// parseCues parses "positive:" and "negative:" comma-separated cue lines.
func parseCues(body string) (positive, negative []string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		cues := splitCueList(rest)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "positive":
			positive = append(positive, cues...)
		case "negative":
			negative = append(negative, cues...)
		}
	}
	return positive, negative
}

// splitCueList splits a comma-separated cue list, dropping empties.
func splitCueList(s string) []string {
	var cues []string
	for _, cue := range strings.Split(s, ",") {
		cue = strings.TrimSpace(cue)
		if cue != "" {
			cues = append(cues, cue)
		}
	}
	return cues
}

// parseListItems extracts "- item" lines from a section body.
func parseListItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			items = append(items, strings.TrimSpace(trimmed[2:]))
		}
	}
	return items
}
