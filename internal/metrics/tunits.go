package metrics

import (
	"github.com/fluentlab/fluentlab/internal/align"
	"github.com/fluentlab/fluentlab/internal/detect"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// TUnits splits a speaker's word sequence into T-units at the sentence
// boundaries recovered from the punctuated pass, matched by timestamp. A
// word sequence with zero matched boundaries is a single T-unit; an empty
// word sequence yields none.
func TUnits(words []types.Word, sentences []types.Sentence) [][]types.Word {
	if len(words) == 0 {
		return nil
	}
	idx := align.SentenceIndices(words, sentences)

	var units [][]types.Word
	start := 0
	for i := 1; i < len(words); i++ {
		if idx[i] == idx[i-1] {
			continue
		}
		units = append(units, words[start:i])
		start = i
	}
	return append(units, words[start:])
}

// tunitTokens flattens T-unit word groups into normalized token groups for
// the false-start detector.
func tunitTokens(units [][]types.Word) [][]string {
	out := make([][]string, len(units))
	for i, u := range units {
		out[i] = detect.NormalizedTokens(detect.Tokens(u))
	}
	return out
}
