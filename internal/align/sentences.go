package align

import "github.com/fluentlab/fluentlab/pkg/types"

// SentenceIndices assigns each word to the punctuated-pass sentence it
// overlaps most, reusing the segment overlap rule at sentence granularity.
// The returned slice is parallel to words; a word that overlaps no sentence
// takes the index of the nearest one, and -1 when sentences is empty.
//
// The metrics engine uses these indices to recover sentence-terminal
// boundaries for T-unit derivation.
func SentenceIndices(words []types.Word, sentences []types.Sentence) []int {
	// Sentences arrive time-ordered from the punctuated pass (ingest
	// validates ordering), so no normalization pass is needed here.
	segs := make([]types.Segment, len(sentences))
	for i, s := range sentences {
		segs[i] = types.Segment{Start: s.Start, End: s.End}
	}

	out := make([]int, len(words))
	lo := 0
	for i, w := range words {
		for lo < len(segs) && segs[lo].End < w.Start {
			lo++
		}
		idx, ok := bestSegment(w, segs, lo)
		if !ok {
			idx = nearestSegment(w, segs)
		}
		out[i] = idx
	}
	return out
}
