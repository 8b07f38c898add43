package detect

import "github.com/fluentlab/fluentlab/pkg/types"

// Default gap thresholds in milliseconds.
const (
	DefaultHesitationThresholdMS = 800
	DefaultLongPauseThresholdMS  = 1000
)

// HesitationTrigger records a word after which the speaker hesitated.
type HesitationTrigger struct {
	// Word is the text of the word preceding the gap.
	Word string `json:"word"`

	// Index is the word's position in the input sequence.
	Index int `json:"index"`

	// GapMS is the silence between this word's end and the next word's
	// start.
	GapMS int64 `json:"gap_ms"`

	// AtMS is the end timestamp of the triggering word.
	AtMS int64 `json:"at_ms"`
}

// HesitationResult is the output of [Hesitations].
type HesitationResult struct {
	Count     int                 `json:"count"`
	MeanGapMS float64             `json:"mean_gap_ms"`
	Triggers  []HesitationTrigger `json:"triggers,omitempty"`
}

// Hesitations computes the gap between each word and the next; when a gap
// exceeds thresholdMS the preceding word is recorded as a hesitation
// trigger. A non-positive threshold selects the default (800 ms).
func Hesitations(words []types.Word, thresholdMS int64) HesitationResult {
	if thresholdMS <= 0 {
		thresholdMS = DefaultHesitationThresholdMS
	}
	var res HesitationResult
	var total int64
	for i := 0; i+1 < len(words); i++ {
		gap := words[i+1].Start - words[i].End
		if gap <= thresholdMS {
			continue
		}
		res.Triggers = append(res.Triggers, HesitationTrigger{
			Word:  words[i].Text,
			Index: i,
			GapMS: gap,
			AtMS:  words[i].End,
		})
		total += gap
	}
	res.Count = len(res.Triggers)
	if res.Count > 0 {
		res.MeanGapMS = float64(total) / float64(res.Count)
	}
	return res
}

// PauseResult is the output of [Pauses].
type PauseResult struct {
	// Count is the number of positive inter-word gaps.
	Count int `json:"count"`

	// LongCount is the number of gaps exceeding the long-pause threshold.
	LongCount int `json:"long_count"`

	// TotalMS is the sum of all positive gaps.
	TotalMS int64 `json:"total_ms"`

	// MeanMS is TotalMS / Count, or 0 when there are no pauses.
	MeanMS float64 `json:"mean_ms"`
}

// Pauses sums all positive inter-word gaps and counts those exceeding
// longThresholdMS as long pauses. A non-positive threshold selects the
// default (1000 ms).
func Pauses(words []types.Word, longThresholdMS int64) PauseResult {
	if longThresholdMS <= 0 {
		longThresholdMS = DefaultLongPauseThresholdMS
	}
	var res PauseResult
	for i := 0; i+1 < len(words); i++ {
		gap := words[i+1].Start - words[i].End
		if gap <= 0 {
			continue
		}
		res.Count++
		res.TotalMS += gap
		if gap > longThresholdMS {
			res.LongCount++
		}
	}
	if res.Count > 0 {
		res.MeanMS = float64(res.TotalMS) / float64(res.Count)
	}
	return res
}
