// Package token turns free text (titles, authors, search phrases) into the
// bounded token sets used by the book search index.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize normalizes the given strings into a deduplicated, ordered token
// set: lowercase, diacritics stripped, non-alphanumeric runs act as
// separators, tokens shorter than 2 characters dropped, capped at 10 tokens
// total in first-seen order (earlier arguments win the cap).
func Tokenize(vals ...string) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0, maxTokens)

	for _, v := range vals {
		for _, t := range split(normalize(v)) {
			if len(t) < minTokenLen || seen[t] {
				continue
			}
			seen[t] = true
			tokens = append(tokens, t)
			if len(tokens) == maxTokens {
				return tokens
			}
		}
	}
	return tokens
}

const (
	minTokenLen = 2
	maxTokens   = 10
)

func normalize(s string) string {
	out, _, err := transform.String(stripDiacritics, strings.ToLower(s))
	if err != nil {
		// NFD decomposition does not fail on valid UTF-8; fall back to the
		// lowercased input so a token set is still produced.
		return strings.ToLower(s)
	}
	return out
}

// split breaks the normalized string on any run of characters outside
// [a-z0-9]. Runes outside ASCII (e.g. CJK) are treated as separators, which
// matches how the index was built.
func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// Overlaps reports whether the two token sets share at least one token.
func Overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}
