package llm

import (
	"fmt"
	"strings"
)

// ExtractJSON extracts a JSON object from model output that may contain
// markdown fences or surrounding prose. Models frequently wrap JSON in
// ```json blocks or add explanation before and after.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)

	// Try fenced code block first
	if extracted := extractFromCodeBlock(content); strings.HasPrefix(extracted, "{") {
		return cleanJSON(extracted), nil
	}

	// Find the outermost braces
	start := strings.Index(content, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in content")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return cleanJSON(content[start : i+1]), nil
				}
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON object in content")
}

// ExtractJSONArray extracts a JSON array from model output, with the same
// fence and prose tolerance as ExtractJSON.
func ExtractJSONArray(content string) (string, error) {
	content = strings.TrimSpace(content)

	if extracted := extractFromCodeBlock(content); strings.HasPrefix(extracted, "[") {
		return cleanJSON(extracted), nil
	}

	start := strings.Index(content, "[")
	if start == -1 {
		return "", fmt.Errorf("no JSON array found in content")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return cleanJSON(content[start : i+1]), nil
				}
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON array in content")
}

// extractFromCodeBlock pulls the body out of a ```json fenced block.
func extractFromCodeBlock(content string) string {
	for _, marker := range []string{"```json", "```"} {
		idx := strings.Index(content, marker)
		if idx == -1 {
			continue
		}
		rest := content[idx+len(marker):]
		end := strings.Index(rest, "```")
		if end == -1 {
			continue
		}
		candidate := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(candidate, "{") || strings.HasPrefix(candidate, "[") {
			return candidate
		}
	}
	return ""
}

// cleanJSON strips line comments that some models emit inside JSON.
func cleanJSON(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

// stripLineComment removes a trailing // comment, respecting strings.
func stripLineComment(line string) string {
	inString := false
	escaped := false
	for i := 0; i < len(line)-1; i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && line[i+1] == '/' {
				return strings.TrimRight(line[:i], " \t")
			}
		}
	}
	return line
}
