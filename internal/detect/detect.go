// Package detect implements the pattern detectors that feed the metrics
// engine: fillers, hesitations, pauses, n-grams, subordinate-clause markers,
// false starts and fragments, and vocabulary.
//
// Every detector is a pure function from a word or token sequence to a
// structured result. Detectors share no mutable state and never depend on
// each other's output; the metrics engine composes them and isolates their
// failures. The fixed lexicons (filler words, subordinate-clause markers,
// the common-bigram baseline) are package-level read-only values initialised
// at load time.
package detect

import (
	"strings"
	"unicode"

	"github.com/fluentlab/fluentlab/pkg/types"
)

// Tokens extracts the raw token texts from a word sequence.
func Tokens(words []types.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}

// Normalize lowercases a token and strips leading and trailing punctuation.
// The raw pass carries no punctuation of its own, but tokens copied from the
// punctuated companion pass may.
func Normalize(token string) string {
	return strings.ToLower(strings.TrimFunc(token, isPunctRune))
}

// IsPunctuation reports whether the token consists solely of punctuation or
// symbol runes.
func IsPunctuation(token string) bool {
	if token == "" {
		return true
	}
	for _, r := range token {
		if !isPunctRune(r) {
			return false
		}
	}
	return true
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// NormalizedTokens lowercases all tokens and drops pure-punctuation tokens.
func NormalizedTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsPunctuation(t) {
			continue
		}
		out = append(out, Normalize(t))
	}
	return out
}
