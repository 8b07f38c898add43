// Package lexlemma adapts the in-process reference lexicon's heuristic
// suffix-stripper to the [tagger.Lemmatizer] interface. It gives sessions a
// lemmatization capability without any external service, at the cost of
// heuristic (rather than morphological) accuracy.
package lexlemma

import (
	"context"

	"github.com/fluentlab/fluentlab/internal/lexicon"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
)

// Compile-time interface assertion.
var _ tagger.Lemmatizer = (*Lemmatizer)(nil)

// Lemmatizer is a lexicon-backed [tagger.Lemmatizer]. It is read-only after
// construction and safe for concurrent use.
type Lemmatizer struct {
	table *lexicon.Table
}

// New creates a Lemmatizer over the given table.
func New(table *lexicon.Table) *Lemmatizer {
	return &Lemmatizer{table: table}
}

// Lemmatize implements [tagger.Lemmatizer]. The category is ignored — the
// suffix stripper is category-agnostic.
func (l *Lemmatizer) Lemmatize(_ context.Context, token string, _ tagger.Category) (string, error) {
	return l.table.Lemmatize(token), nil
}
