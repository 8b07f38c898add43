package detect

import (
	"sort"
	"strings"
)

// DefaultFormulaicMinCount is the occurrence threshold above which an n-gram
// is surfaced as a formulaic sequence.
const DefaultFormulaicMinCount = 3

// NGramSizes are the window sizes the detector slides over the token
// sequence.
var NGramSizes = []int{2, 3, 4}

// NGramCount is one distinct n-gram with its frequency.
type NGramCount struct {
	// Phrase is the space-joined, lower-cased n-gram.
	Phrase string `json:"phrase"`

	// N is the n-gram order.
	N int `json:"n"`

	// Count is the number of occurrences.
	Count int `json:"count"`
}

// NGramResult is the output of [NGrams].
type NGramResult struct {
	// Frequencies maps n-gram order to the distinct n-grams of that
	// order, sorted by count descending then phrase for determinism.
	Frequencies map[int][]NGramCount `json:"frequencies,omitempty"`

	// Formulaic lists n-grams that occurred at least the formulaic
	// threshold number of times, ranked by count descending; at equal
	// count longer sequences rank above shorter ones.
	Formulaic []NGramCount `json:"formulaic,omitempty"`

	// TotalBigrams is the number of bigram windows scanned.
	TotalBigrams int `json:"total_bigrams"`

	// CommonBigrams is the number of bigram windows found in the
	// high-frequency baseline set.
	CommonBigrams int `json:"common_bigrams"`

	// Naturalness scores 0–100 how much of the speaker's bigram output
	// consists of high-frequency English combinations.
	Naturalness float64 `json:"naturalness"`
}

// NGrams slides windows of each size in [NGramSizes] over the token
// sequence (lower-cased, pure-punctuation tokens excluded) and counts
// frequencies per distinct n-gram. minFormulaic ≤ 0 selects the default
// threshold of 3.
func NGrams(tokens []string, minFormulaic int) NGramResult {
	if minFormulaic <= 0 {
		minFormulaic = DefaultFormulaicMinCount
	}
	clean := NormalizedTokens(tokens)

	res := NGramResult{Frequencies: make(map[int][]NGramCount)}

	for _, n := range NGramSizes {
		counts := make(map[string]int)
		for i := 0; i+n <= len(clean); i++ {
			counts[strings.Join(clean[i:i+n], " ")]++
		}
		if len(counts) == 0 {
			continue
		}
		list := make([]NGramCount, 0, len(counts))
		for phrase, c := range counts {
			list = append(list, NGramCount{Phrase: phrase, N: n, Count: c})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Count != list[j].Count {
				return list[i].Count > list[j].Count
			}
			return list[i].Phrase < list[j].Phrase
		})
		res.Frequencies[n] = list

		for _, ng := range list {
			if ng.Count >= minFormulaic {
				res.Formulaic = append(res.Formulaic, ng)
			}
		}
	}
	if len(res.Frequencies) == 0 {
		res.Frequencies = nil
	}

	// Rank formulaic sequences: count desc, then longer n, then phrase.
	sort.Slice(res.Formulaic, func(i, j int) bool {
		a, b := res.Formulaic[i], res.Formulaic[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.N != b.N {
			return a.N > b.N
		}
		return a.Phrase < b.Phrase
	})

	// Naturalness: share of bigram windows found in the common baseline,
	// scaled by 250 and capped at 100. Even native conversation is full of
	// one-off bigrams, so a raw ratio near 0.4 already indicates highly
	// conventional phrasing.
	for i := 0; i+2 <= len(clean); i++ {
		res.TotalBigrams++
		if commonBigrams[clean[i]+" "+clean[i+1]] {
			res.CommonBigrams++
		}
	}
	if res.TotalBigrams > 0 {
		score := float64(res.CommonBigrams) / float64(res.TotalBigrams) * 250
		res.Naturalness = min(100, score)
	}
	return res
}

// commonBigrams is a seed set of high-frequency English bigrams used for the
// naturalness score.
var commonBigrams = func() map[string]bool {
	list := []string{
		"i am", "i have", "i was", "i will", "i think", "i know", "i agree",
		"it is", "it was", "it has", "it can", "it sounds",
		"there is", "there are", "there was", "there were",
		"going to", "want to", "have to", "need to", "used to",
		"in the", "on the", "at the", "to the", "of the", "for the",
		"with the", "from the", "by the", "about the", "into the",
		"is a", "was a", "has a", "be a", "with a", "for a",
		"the first", "the last", "the next", "the same", "the other",
		"a lot", "a little", "a few", "a bit", "a large",
		"do not", "does not", "did not", "will not", "can not",
		"don't know", "don't think", "didn't have", "can't do",
		"how was", "was your", "did you", "you do", "you should", "you can",
		"i would", "we should", "they are", "this is", "that is",
		"has been", "have been", "had been", "will be",
		"as well", "such as", "kind of", "sort of", "part of",
		"you know", "you see", "i'm sure", "actually i",
	}
	m := make(map[string]bool, len(list))
	for _, b := range list {
		m[b] = true
	}
	return m
}()
