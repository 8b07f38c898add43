// Package align implements the dual-pass alignment engine: it merges the
// raw, disfluency-preserving word stream with the independently produced
// diarization segment stream into a speaker-attributed transcript.
//
// The merge is an interval-overlap join done as a two-pointer sweep over the
// two time-sorted streams, so cost stays linear in stream length even for
// multi-hour sessions. For each raw word the engine picks the diarization
// segment with the greatest overlap, resolving ties deterministically:
//
//  1. larger overlap fraction relative to the word's duration,
//  2. smaller absolute distance between segment and word midpoints,
//  3. earlier segment start.
//
// Words with no overlapping segment fall back to the segment whose time
// window is nearest the word midpoint; if the diarization pass produced no
// segments at all the word is labeled [types.SpeakerUnknown]. Both fallbacks are recoverable
// anomalies, never errors.
//
// The transformation is label-only: text, timestamps, confidences, and word
// order from the raw pass are untouched, so flattening the output turns
// reproduces the raw stream exactly.
package align

import (
	"log/slog"
	"sort"

	"github.com/fluentlab/fluentlab/pkg/types"
)

// Result is the outcome of one alignment run.
type Result struct {
	// Transcript is the speaker-attributed transcript.
	Transcript types.Transcript

	// Anomalies counts words that required the zero-overlap fallback
	// (nearest segment or unknown speaker).
	Anomalies int

	// MalformedSegments counts adjacent segment pairs that violated the
	// diarization contract (overlapping or out of order). Such input is
	// still resolved deterministically by the overlap rule.
	MalformedSegments int
}

// Align assigns a speaker label to every word and groups consecutive
// same-speaker words into turns. It assumes the streams passed structural
// validation (see the ingest package); contract violations that can be
// resolved deterministically — overlapping or unordered segments, timing
// gaps between the passes — are tolerated and counted, never fatal.
func Align(words []types.Word, segments []types.Segment) *Result {
	res := &Result{}

	segs, malformed := normalizeSegments(segments)
	res.MalformedSegments = malformed
	if malformed > 0 {
		slog.Warn("diarization contract violated; resolving by overlap rule",
			"malformed_pairs", malformed)
	}

	labels := make([]string, len(words))
	lo := 0
	for i, w := range words {
		// Advance the window past segments that end before this word
		// begins. Words are time-ordered, so the pointer never moves back.
		for lo < len(segs) && segs[lo].End < w.Start {
			lo++
		}

		idx, ok := bestSegment(w, segs, lo)
		if !ok {
			idx = nearestSegment(w, segs)
			res.Anomalies++
			if idx < 0 {
				labels[i] = types.SpeakerUnknown
				continue
			}
			slog.Debug("word has no overlapping segment; using nearest",
				"word", w.Text, "start", w.Start, "segment_start", segs[idx].Start)
		}
		labels[i] = segs[idx].Speaker
	}

	res.Transcript = buildTurns(words, labels)
	return res
}

// bestSegment scans candidate segments starting at lo and returns the index
// of the segment maximizing overlap with w under the tie-break chain.
// ok is false when no segment has nonzero overlap (or, for a zero-duration
// word, no segment contains its instant).
func bestSegment(w types.Word, segs []types.Segment, lo int) (idx int, ok bool) {
	best := -1
	var bestOverlap int64

	for i := lo; i < len(segs); i++ {
		s := segs[i]
		if s.Start > w.End {
			break
		}

		var ov int64
		if w.Duration() == 0 {
			// A zero-duration word overlaps a segment iff its single
			// timestamp falls inside the segment window.
			if !s.Contains(w.Start) {
				continue
			}
		} else {
			ov = s.Overlap(w)
			if ov == 0 {
				continue
			}
		}

		if best < 0 || better(w, s, ov, segs[best], bestOverlap) {
			best, bestOverlap = i, ov
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// better reports whether candidate segment a (overlap ovA) beats the current
// best b (overlap ovB) for word w. The word duration is constant across
// candidates, so comparing overlap fractions reduces to comparing raw
// overlaps.
func better(w types.Word, a types.Segment, ovA int64, b types.Segment, ovB int64) bool {
	if ovA != ovB {
		return ovA > ovB
	}
	da := w.MidpointDistance2(a.Start, a.End)
	db := w.MidpointDistance2(b.Start, b.End)
	if da != db {
		return da < db
	}
	return a.Start < b.Start
}

// nearestSegment returns the index of the segment whose time window is
// closest to the word midpoint (zero inside the window, otherwise distance
// to the nearer edge), or -1 when there are no segments. Ties resolve to
// the earlier-starting segment. This is the rare anomaly path, so a linear
// scan is acceptable.
func nearestSegment(w types.Word, segs []types.Segment) int {
	best := -1
	var bestDist int64
	for i, s := range segs {
		d := w.WindowDistance2(s.Start, s.End)
		if best < 0 || d < bestDist || (d == bestDist && s.Start < segs[best].Start) {
			best, bestDist = i, d
		}
	}
	return best
}

// normalizeSegments returns a time-sorted copy of segments and the number of
// contract violations found (out-of-order or overlapping adjacent pairs).
func normalizeSegments(segments []types.Segment) ([]types.Segment, int) {
	segs := make([]types.Segment, len(segments))
	copy(segs, segments)

	malformed := 0
	for i := 1; i < len(segs); i++ {
		if segs[i].Start < segs[i-1].End {
			malformed++
		}
	}
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].Start != segs[j].Start {
			return segs[i].Start < segs[j].Start
		}
		return segs[i].End < segs[j].End
	})
	return segs, malformed
}

// buildTurns groups the labeled word sequence into turns. A turn closes when
// the speaker label changes or when a raw-pass utterance boundary (IsFinal)
// is encountered; the boundary is a soft hint and never overrides a label
// change.
func buildTurns(words []types.Word, labels []string) types.Transcript {
	var tr types.Transcript
	var cur []types.Word
	curSpeaker := ""

	flush := func(confidence float64) {
		if len(cur) == 0 {
			return
		}
		tr.Turns = append(tr.Turns, types.Turn{
			Speaker:             curSpeaker,
			Words:               cur,
			EndOfTurnConfidence: confidence,
		})
		cur = nil
	}

	for i, w := range words {
		if len(cur) > 0 && labels[i] != curSpeaker {
			// Forced close: the previous word was not marked final.
			flush(0.5)
		}
		curSpeaker = labels[i]
		cur = append(cur, w)
		if w.IsFinal {
			flush(1.0)
		}
	}
	flush(1.0)
	return tr
}
