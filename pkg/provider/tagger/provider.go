// Package tagger defines the external linguistic capability interfaces: a
// part-of-speech tagger and a lemmatizer.
//
// Both capabilities are optional collaborators. When a capability is absent
// or failing, the metrics engine marks the dependent metrics (lexical
// density, POS distribution, lemma-level vocabulary) as unavailable and
// carries on — capability failure is never fatal to a session.
package tagger

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by implementations when the capability cannot
// be reached or was never configured. Callers test for it with [errors.Is]
// and degrade the dependent metrics instead of failing.
var ErrUnavailable = errors.New("tagger: capability unavailable")

// Category is a coarse part-of-speech category.
type Category string

// Categories reported by taggers. Implementations mapping a richer native
// tagset (e.g. Penn Treebank) must collapse it to these values.
const (
	CategoryNoun        Category = "noun"
	CategoryVerb        Category = "verb"
	CategoryAdjective   Category = "adjective"
	CategoryAdverb      Category = "adverb"
	CategoryPreposition Category = "preposition"
	CategoryDeterminer  Category = "determiner"
	CategoryPronoun     Category = "pronoun"
	CategoryOther       Category = "other"
)

// OpenClass reports whether the category counts toward lexical density
// (nouns, verbs, adjectives, adverbs).
func (c Category) OpenClass() bool {
	switch c {
	case CategoryNoun, CategoryVerb, CategoryAdjective, CategoryAdverb:
		return true
	}
	return false
}

// TaggedToken pairs a token with its category.
type TaggedToken struct {
	Token    string   `json:"token"`
	Category Category `json:"category"`
}

// Tagger assigns a part-of-speech category to every token of a sequence.
//
// Implementations must be safe for concurrent use.
type Tagger interface {
	// Tag returns one [TaggedToken] per input token, in order. It returns
	// an error wrapping [ErrUnavailable] when the capability cannot serve
	// the request.
	Tag(ctx context.Context, tokens []string) ([]TaggedToken, error)
}

// Lemmatizer reduces a token to its base form given its category.
//
// Implementations must be safe for concurrent use.
type Lemmatizer interface {
	// Lemmatize returns the base form of token. It returns an error
	// wrapping [ErrUnavailable] when the capability cannot serve the
	// request.
	Lemmatize(ctx context.Context, token string, category Category) (string, error)
}
