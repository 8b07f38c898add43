package detect

import (
	"context"
	"errors"

	"github.com/fluentlab/fluentlab/internal/lexicon"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// DefaultMinWordConfidence is the confidence floor below which words are
// excluded from vocabulary analysis. Low-confidence tokens are usually
// mistranscriptions and would inflate the unknown-word counts; they are
// never excluded from alignment or timing metrics.
const DefaultMinWordConfidence = 0.85

// VocabularyResult is the output of [Vocabulary].
type VocabularyResult struct {
	// TotalTokens counts the confident, non-punctuation tokens analyzed.
	TotalTokens int `json:"total_tokens"`

	// FilteredTokens counts tokens excluded by the confidence floor.
	FilteredTokens int `json:"filtered_tokens"`

	// UniqueTokens is the number of distinct normalized tokens.
	UniqueTokens int `json:"unique_tokens"`

	// TypeTokenRatio is UniqueTokens / TotalTokens.
	TypeTokenRatio types.Ratio `json:"type_token_ratio"`

	// Whitelisted counts tokens resolved against the reference table
	// (exact, lemma, or fuzzy). Zero when no table is configured.
	Whitelisted int `json:"whitelisted"`

	// Academic counts tokens resolved to the teaching list.
	Academic int `json:"academic"`

	// Unknown counts tokens the reference table could not resolve.
	Unknown int `json:"unknown"`

	// UnknownRatio is Unknown / TotalTokens.
	UnknownRatio types.Ratio `json:"unknown_ratio"`

	// UniqueLemmas is the size of the lemma set, when the lemmatization
	// capability was available.
	UniqueLemmas int `json:"unique_lemmas,omitempty"`

	// LemmasAvailable reports whether lemma-level analysis ran.
	LemmasAvailable bool `json:"lemmas_available"`

	// LemmaUnavailableReason explains a false LemmasAvailable.
	LemmaUnavailableReason string `json:"lemma_unavailable_reason,omitempty"`

	// LemmaSet is the distinct lemma set, consumed by the comparative
	// analyzer. Not part of the wire payload.
	LemmaSet map[string]struct{} `json:"-"`
}

// Vocabulary computes unique-token and type-token statistics for a word
// sequence, resolves tokens against the reference table when one is
// provided, and builds the lemma set via the lemmatization capability when
// one is provided. Capability absence or failure degrades only the
// lemma-level fields.
func Vocabulary(ctx context.Context, words []types.Word, minConfidence float64, table *lexicon.Table, lemm tagger.Lemmatizer) VocabularyResult {
	if minConfidence <= 0 {
		minConfidence = DefaultMinWordConfidence
	}

	var res VocabularyResult
	unique := make(map[string]struct{})
	var confident []string

	for _, w := range words {
		if w.Confidence < minConfidence {
			res.FilteredTokens++
			continue
		}
		t := Normalize(w.Text)
		if t == "" || IsPunctuation(w.Text) {
			continue
		}
		confident = append(confident, t)
		unique[t] = struct{}{}
	}

	res.TotalTokens = len(confident)
	res.UniqueTokens = len(unique)
	if res.TotalTokens > 0 {
		res.TypeTokenRatio = types.Ratio(float64(res.UniqueTokens) / float64(res.TotalTokens))
	}

	if table != nil && table.Len() > 0 {
		for _, t := range confident {
			resolved, ok := table.Resolve(t)
			if !ok {
				res.Unknown++
				continue
			}
			res.Whitelisted++
			if table.IsAcademic(resolved) {
				res.Academic++
			}
		}
		if res.TotalTokens > 0 {
			res.UnknownRatio = types.Ratio(float64(res.Unknown) / float64(res.TotalTokens))
		}
	}

	if lemm == nil {
		res.LemmaUnavailableReason = "lemmatizer not configured"
		return res
	}
	lemmas := make(map[string]struct{}, len(unique))
	for t := range unique {
		lemma, err := lemm.Lemmatize(ctx, t, tagger.CategoryOther)
		if err != nil {
			if errors.Is(err, tagger.ErrUnavailable) {
				res.LemmaUnavailableReason = "lemmatizer unavailable"
			} else {
				res.LemmaUnavailableReason = err.Error()
			}
			return res
		}
		lemmas[lemma] = struct{}{}
	}
	res.LemmasAvailable = true
	res.UniqueLemmas = len(lemmas)
	res.LemmaSet = lemmas
	return res
}
