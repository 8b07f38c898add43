package detect

import "strings"

// DefaultFillerWords is the fixed filler lexicon. Multi-word entries match
// consecutive tokens; all matching is case-insensitive and whole-token.
var DefaultFillerWords = []string{
	"um", "uh", "like", "you know", "so", "well", "actually",
}

// FillerMatch records one filler occurrence.
type FillerMatch struct {
	// Filler is the matched lexicon entry.
	Filler string `json:"filler"`

	// Position is the index of the first matched token within the input
	// sequence.
	Position int `json:"position"`
}

// FillerResult is the output of [Fillers].
type FillerResult struct {
	// TotalTokens is the number of input tokens considered.
	TotalTokens int `json:"total_tokens"`

	// FillerTokens is the number of tokens consumed by filler matches
	// (a two-word filler contributes two).
	FillerTokens int `json:"filler_tokens"`

	// Rate is FillerTokens / TotalTokens × 100, or 0 for empty input.
	Rate float64 `json:"rate_pct"`

	// ByFiller maps each lexicon entry to its occurrence count. Entries
	// with zero occurrences are omitted.
	ByFiller map[string]int `json:"by_filler,omitempty"`

	// Matches lists every occurrence in token order.
	Matches []FillerMatch `json:"matches,omitempty"`
}

// Fillers matches the filler lexicon against token boundaries. Matching is
// case-insensitive and whole-token (never substring); multi-word entries are
// matched greedily and longest-first, so "you know" is counted once rather
// than as a stray "you" plus "know".
func Fillers(tokens []string, lexicon []string) FillerResult {
	if len(lexicon) == 0 {
		lexicon = DefaultFillerWords
	}

	// Split the lexicon by phrase length, longest phrases first.
	type phrase struct {
		text   string
		tokens []string
	}
	var phrases []phrase
	maxLen := 1
	for _, entry := range lexicon {
		p := phrase{text: entry, tokens: strings.Fields(strings.ToLower(entry))}
		if len(p.tokens) == 0 {
			continue
		}
		if len(p.tokens) > maxLen {
			maxLen = len(p.tokens)
		}
		phrases = append(phrases, p)
	}

	norm := make([]string, len(tokens))
	for i, t := range tokens {
		norm[i] = Normalize(t)
	}

	res := FillerResult{TotalTokens: len(tokens), ByFiller: make(map[string]int)}

	for i := 0; i < len(norm); {
		matched := 0
		// Prefer the longest phrase starting at i.
		for length := maxLen; length > 0 && matched == 0; length-- {
			if i+length > len(norm) {
				continue
			}
			for _, p := range phrases {
				if len(p.tokens) != length {
					continue
				}
				if equalTokens(norm[i:i+length], p.tokens) {
					res.ByFiller[p.text]++
					res.Matches = append(res.Matches, FillerMatch{Filler: p.text, Position: i})
					res.FillerTokens += length
					matched = length
					break
				}
			}
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}

	if res.TotalTokens > 0 {
		res.Rate = float64(res.FillerTokens) / float64(res.TotalTokens) * 100
	}
	if len(res.ByFiller) == 0 {
		res.ByFiller = nil
	}
	return res
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
