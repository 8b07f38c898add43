// Package types defines the shared data model used across all fluentlab
// packages.
//
// These types form the lingua franca between the stream ingest layer, the
// alignment engine, the pattern detectors, and the metrics engine. They are
// intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
//
// All types in this package are immutable by convention: once a stream has
// been ingested no component mutates a [Word] or [Segment], and once the
// alignment engine has produced a [Transcript] its turns are never modified.
package types

import (
	"math"
	"strconv"
	"strings"
)

// SpeakerUnknown is the speaker label assigned to words that could not be
// attributed to any diarization segment (for example when the diarization
// pass produced no segments at all). It is a recoverable condition, not an
// error.
const SpeakerUnknown = "unknown"

// Word is a single token from the raw transcription pass. The raw pass is
// un-punctuated and disfluency-preserving: repetitions, false starts, and
// filled pauses ("um", "uh") appear exactly as spoken.
//
// Words within one stream are ordered by Start and never overlap each other.
type Word struct {
	// Text is the token exactly as produced by the transcription service.
	Text string `json:"text"`

	// Start and End are millisecond offsets from the beginning of the
	// session audio. A zero-duration word (Start == End) is legal and
	// represents an instantaneous token.
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	// Confidence is the transcription confidence for this token (0.0–1.0).
	Confidence float64 `json:"confidence"`

	// IsFinal marks the last word of a raw-pass utterance. Alignment treats
	// it as a soft end-of-turn hint; it never overrides a speaker change.
	IsFinal bool `json:"is_final,omitempty"`
}

// Duration returns the word's duration in milliseconds.
func (w Word) Duration() int64 { return w.End - w.Start }

// MidpointDistance2 returns twice the absolute distance, in milliseconds,
// between the word midpoint and the midpoint of the interval [start, end].
// The doubled value keeps midpoint-distance comparisons in exact integer
// arithmetic; callers only ever compare these values against each other.
func (w Word) MidpointDistance2(start, end int64) int64 {
	d := (start + end) - (w.Start + w.End)
	if d < 0 {
		d = -d
	}
	return d
}

// WindowDistance2 returns twice the absolute distance, in milliseconds,
// between the word midpoint and the interval [start, end]: zero when the
// midpoint falls inside the window, otherwise the distance to the nearer
// edge. Doubled for the same exact-integer reason as [MidpointDistance2].
func (w Word) WindowDistance2(start, end int64) int64 {
	m2 := w.Start + w.End
	if d := 2*start - m2; d > 0 {
		return d
	}
	if d := m2 - 2*end; d > 0 {
		return d
	}
	return 0
}

// Segment is one speaker-labeled interval from the diarization pass.
// The diarization service's contract is that segments are contiguous,
// time-ordered, and non-overlapping; the alignment engine tolerates
// violations defensively.
type Segment struct {
	Speaker string `json:"speaker"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

// Contains reports whether the instant t falls within [s.Start, s.End].
func (s Segment) Contains(t int64) bool { return t >= s.Start && t <= s.End }

// Overlap returns the overlap in milliseconds between the segment and the
// word: max(0, min(w.End, s.End) − max(w.Start, s.Start)).
func (s Segment) Overlap(w Word) int64 {
	lo := max(w.Start, s.Start)
	hi := min(w.End, s.End)
	if hi < lo {
		return 0
	}
	return hi - lo
}

// Sentence is one sentence from the punctuated companion pass, used to
// recover sentence-terminal boundaries for T-unit derivation.
type Sentence struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Turn is a maximal run of consecutive same-speaker words produced by the
// alignment engine. Turn text is the raw concatenation of its words —
// speaker assignment never alters casing, punctuation, or order.
type Turn struct {
	// Speaker is the diarization label this turn is attributed to, or
	// [SpeakerUnknown].
	Speaker string `json:"speaker"`

	// Words are the raw-pass words of this turn, in original stream order.
	Words []Word `json:"words"`

	// EndOfTurnConfidence reflects how the turn boundary was decided:
	// 1.0 when the turn closed on a raw-pass utterance boundary (or at the
	// end of the stream), 0.5 when it was forced by a speaker-label change
	// mid-utterance.
	EndOfTurnConfidence float64 `json:"end_of_turn_confidence"`
}

// Start returns the start time of the turn's first word, or 0 for an empty
// turn.
func (t Turn) Start() int64 {
	if len(t.Words) == 0 {
		return 0
	}
	return t.Words[0].Start
}

// End returns the end time of the turn's last word, or 0 for an empty turn.
func (t Turn) End() int64 {
	if len(t.Words) == 0 {
		return 0
	}
	return t.Words[len(t.Words)-1].End
}

// Duration returns End − Start in milliseconds.
func (t Turn) Duration() int64 { return t.End() - t.Start() }

// Text returns the turn transcript: the words' raw text joined by single
// spaces.
func (t Turn) Text() string {
	parts := make([]string, len(t.Words))
	for i, w := range t.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Transcript is the speaker-attributed transcript: the ordered sequence of
// turns produced by the alignment engine. Invariant: concatenating all
// turns' words, in order, reproduces the raw word stream exactly.
type Transcript struct {
	Turns []Turn `json:"turns"`
}

// Words returns all words of the transcript flattened back into raw stream
// order.
func (tr Transcript) Words() []Word {
	var out []Word
	for _, t := range tr.Turns {
		out = append(out, t.Words...)
	}
	return out
}

// SpeakerWords returns the words attributed to the given speaker label, in
// stream order.
func (tr Transcript) SpeakerWords(speaker string) []Word {
	var out []Word
	for _, t := range tr.Turns {
		if t.Speaker == speaker {
			out = append(out, t.Words...)
		}
	}
	return out
}

// SpeakerTurns returns the turns attributed to the given speaker label.
func (tr Transcript) SpeakerTurns(speaker string) []Turn {
	var out []Turn
	for _, t := range tr.Turns {
		if t.Speaker == speaker {
			out = append(out, t)
		}
	}
	return out
}

// Speakers returns the distinct speaker labels in first-appearance order.
func (tr Transcript) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tr.Turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			out = append(out, t.Speaker)
		}
	}
	return out
}

// SessionInput is the complete, immutable input for one session's analysis
// run: the two externally produced streams plus the session identity.
type SessionInput struct {
	// SessionID identifies the recording session.
	SessionID string `json:"session_id"`

	// TutorLabel and StudentLabel are the diarization labels of the two
	// participants (typically "A" and "B").
	TutorLabel   string `json:"tutor_label"`
	StudentLabel string `json:"student_label"`

	// Words is the raw-pass word stream, ordered by start time.
	Words []Word `json:"words"`

	// Segments is the diarization segment stream, ordered by start time.
	Segments []Segment `json:"segments"`

	// Sentences are the punctuated-pass sentences used for T-unit
	// boundaries. May be empty, in which case a speaker's whole output is
	// treated as a single T-unit.
	Sentences []Sentence `json:"sentences"`
}

// Ratio is a float64 that marshals to at most 4 significant decimal digits.
// All ratio-valued metric fields use it so the wire encoding preserves the
// numeric contract without the engine rounding intermediate values.
type Ratio float64

// Round returns the ratio rounded to 4 significant decimal digits.
func (r Ratio) Round() float64 {
	f := float64(r)
	if f == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	scale := math.Pow(10, 3-math.Floor(math.Log10(math.Abs(f))))
	return math.Round(f*scale) / scale
}

// MarshalJSON encodes the rounded value.
func (r Ratio) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, r.Round(), 'g', -1, 64), nil
}
