package evidence

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	wsRe              = regexp.MustCompile(`\s+`)
	hyphenLinebreakRe = regexp.MustCompile(`(\w)[-\x{2010}\x{2011}]\s*\n\s*(\w)`)
	wordRe            = regexp.MustCompile(`[a-z0-9']+`)

	// Curly quotes and NBSP show up in text extracted from rendered documents.
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"’", "'", "‘", "'", "‚", "'", "‛", "'",
		" ", " ",
	)
)

// normalizeForMatch applies tolerant normalization so collaborator quotes
// match extracted document text: NFKC, straightened quotes, joined hyphenated
// line breaks, collapsed whitespace, lowercase.
func normalizeForMatch(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = quoteReplacer.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = hyphenLinebreakRe.ReplaceAllString(s, "$1$2")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// contentTokens extracts matching tokens from a string, dropping short
// tokens to reduce noise.
func contentTokens(s string) []string {
	toks := wordRe.FindAllString(normalizeForMatch(s), -1)
	out := toks[:0]
	for _, t := range toks {
		if len(t) >= 5 {
			out = append(out, t)
		}
	}
	return out
}

// maxOverlapTokens caps how many quote tokens participate in overlap scoring.
const maxOverlapTokens = 12

// tokenOverlapScore counts how many of the quote's first content tokens
// appear in the block.
func tokenOverlapScore(quote, block string) int {
	qtoks := contentTokens(quote)
	if len(qtoks) > maxOverlapTokens {
		qtoks = qtoks[:maxOverlapTokens]
	}
	if len(qtoks) == 0 {
		return 0
	}
	b := normalizeForMatch(block)
	score := 0
	for _, t := range qtoks {
		if strings.Contains(b, t) {
			score++
		}
	}
	return score
}

// Resolve locates a cited quote within the pack.
//
// Fast path: if fragmentID names a fragment and the quote (when present) is
// contained in it, that id is confirmed. Repair path: otherwise every
// fragment is scanned for the quote, fixing misattributed ids. Returns the
// canonical fragment id and whether the quote was located.
func Resolve(pack *Pack, fragmentID, quote string) (string, bool) {
	fragmentID = strings.TrimSpace(fragmentID)
	quote = strings.TrimSpace(quote)

	if fragmentID != "" {
		if frag, ok := pack.Fragment(fragmentID); ok {
			if quote == "" {
				return frag.ID, true
			}
			if strings.Contains(normalizeForMatch(frag.Content), normalizeForMatch(quote)) {
				return frag.ID, true
			}
			// Claimed id exists but does not contain the quote.
			// Fall through to the repair path.
		}
	}

	nq := normalizeForMatch(quote)
	if nq == "" {
		return fragmentID, false
	}

	for _, frag := range pack.Fragments {
		if strings.Contains(normalizeForMatch(frag.Content), nq) {
			return frag.ID, true
		}
	}

	// Exact containment failed (paraphrase or extraction noise). Fall back to
	// token overlap and accept the best fragment when most tokens match.
	bestID := ""
	bestScore := 0
	for _, frag := range pack.Fragments {
		if score := tokenOverlapScore(quote, frag.Content); score > bestScore {
			bestScore = score
			bestID = frag.ID
		}
	}

	qtoks := contentTokens(quote)
	needed := len(qtoks)
	if needed > maxOverlapTokens {
		needed = maxOverlapTokens
	}
	if bestID != "" && needed > 0 && bestScore*2 >= needed { // at least half
		return bestID, true
	}

	return fragmentID, false
}
