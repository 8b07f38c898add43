// Package mock provides in-memory test doubles for the tagger capability
// interfaces.
//
// Each mock records every method call for assertion in tests and exposes
// exported fields that control what the mock returns. All mocks are safe
// for concurrent use via an internal [sync.Mutex].
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
)

// Tagger is a configurable test double for [tagger.Tagger].
type Tagger struct {
	mu    sync.Mutex
	calls int

	// Categories maps lower-cased tokens to the category the mock should
	// report. Tokens not present map to [tagger.CategoryOther].
	Categories map[string]tagger.Category

	// Err is returned by Tag when non-nil.
	Err error
}

// Tag implements [tagger.Tagger].
func (m *Tagger) Tag(_ context.Context, tokens []string) ([]tagger.TaggedToken, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]tagger.TaggedToken, len(tokens))
	for i, t := range tokens {
		cat, ok := m.Categories[strings.ToLower(t)]
		if !ok {
			cat = tagger.CategoryOther
		}
		out[i] = tagger.TaggedToken{Token: t, Category: cat}
	}
	return out, nil
}

// CallCount returns the number of Tag invocations.
func (m *Tagger) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Lemmatizer is a configurable test double for [tagger.Lemmatizer].
type Lemmatizer struct {
	mu    sync.Mutex
	calls int

	// Lemmas maps lower-cased tokens to the lemma the mock should report.
	// Tokens not present are returned unchanged (lower-cased).
	Lemmas map[string]string

	// Err is returned by Lemmatize when non-nil.
	Err error
}

// Lemmatize implements [tagger.Lemmatizer].
func (m *Lemmatizer) Lemmatize(_ context.Context, token string, _ tagger.Category) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	lower := strings.ToLower(token)
	if lemma, ok := m.Lemmas[lower]; ok {
		return lemma, nil
	}
	return lower, nil
}

// CallCount returns the number of Lemmatize invocations.
func (m *Lemmatizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
