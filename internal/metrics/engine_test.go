package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
	taggermock "github.com/fluentlab/fluentlab/pkg/provider/tagger/mock"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// timedWords lays the given tokens out as 200ms words separated by 100ms
// gaps, starting at startMS.
func timedWords(startMS int64, text string) []types.Word {
	fields := strings.Fields(text)
	words := make([]types.Word, len(fields))
	t := startMS
	for i, f := range fields {
		words[i] = types.Word{Text: f, Start: t, End: t + 200, Confidence: 0.95}
		t += 300
	}
	return words
}

func singleTurn(speaker string, words []types.Word) types.Transcript {
	return types.Transcript{Turns: []types.Turn{
		{Speaker: speaker, Words: words, EndOfTurnConfidence: 1.0},
	}}
}

func hasDiagnostic(sm *SessionMetrics, metric string) bool {
	for _, d := range sm.Diagnostics {
		if d.Metric == metric {
			return true
		}
	}
	return false
}

func TestEngine_CAF(t *testing.T) {
	// "I went home. Because I was late, I ran." — two sentences, nine
	// words, one subordinate marker.
	words := timedWords(0, "I went home Because I was late I ran")
	sentences := []types.Sentence{
		{Text: "I went home.", Start: 0, End: 800},
		{Text: "Because I was late, I ran.", Start: 900, End: 2600},
	}
	tr := singleTurn("A", words)

	sm := New().Speaker(context.Background(), tr, "A", sentences)

	if sm.CAF == nil {
		t.Fatalf("CAF unavailable: %+v", sm.Diagnostics)
	}
	if sm.CAF.TUnitCount != 2 {
		t.Fatalf("t-units = %d, want 2", sm.CAF.TUnitCount)
	}
	if sm.CAF.SubordinateCount != 1 {
		t.Errorf("subordinate markers = %d, want 1", sm.CAF.SubordinateCount)
	}
	if got := float64(sm.CAF.MeanLengthOfTUnit); got != 4.5 {
		t.Errorf("MLT = %v, want 4.5", got)
	}
	if got := float64(sm.CAF.ClausesPerTUnit); got != 1.5 {
		t.Errorf("clauses per t-unit = %v, want 1.5", got)
	}
	// No long pauses, so a single run of all nine words.
	if got := float64(sm.CAF.MeanLengthOfRun); got != 9 {
		t.Errorf("MLR = %v, want 9", got)
	}
	if got := float64(sm.CAF.ErrorFreeTUnitPct); got != 100 {
		t.Errorf("error-free %% = %v, want 100", got)
	}
}

func TestEngine_ZeroBoundariesIsOneTUnit(t *testing.T) {
	words := timedWords(0, "i think it is fine")
	sm := New().Speaker(context.Background(), singleTurn("A", words), "A", nil)

	if sm.CAF == nil {
		t.Fatalf("CAF unavailable: %+v", sm.Diagnostics)
	}
	if sm.CAF.TUnitCount != 1 {
		t.Errorf("t-units = %d, want 1", sm.CAF.TUnitCount)
	}
	if got := float64(sm.CAF.MeanLengthOfTUnit); got != 5 {
		t.Errorf("MLT = %v, want 5", got)
	}
}

func TestEngine_MeanLengthOfRunSplitsOnLongPauses(t *testing.T) {
	// Six words with one 1500ms gap in the middle: two runs of three.
	words := append(timedWords(0, "i went to"), timedWords(2300, "the store today")...)
	sm := New().Speaker(context.Background(), singleTurn("A", words), "A", nil)

	if sm.Pauses == nil || sm.Pauses.LongCount != 1 {
		t.Fatalf("pauses = %+v, want one long pause", sm.Pauses)
	}
	if got := float64(sm.CAF.MeanLengthOfRun); got != 3 {
		t.Errorf("MLR = %v, want 3", got)
	}
}

func TestEngine_DegenerateEmptySpeaker(t *testing.T) {
	tr := singleTurn("A", timedWords(0, "hello there"))
	sm := New().Speaker(context.Background(), tr, "B", nil)

	if sm.TotalWords != 0 {
		t.Fatalf("total words = %d, want 0", sm.TotalWords)
	}
	if sm.SpeakingRate == nil || sm.SpeakingRate.MeanWPM != 0 {
		t.Errorf("speaking rate = %+v, want zero record", sm.SpeakingRate)
	}
	if sm.Pauses == nil || sm.Pauses.Count != 0 {
		t.Errorf("pauses = %+v, want zero record", sm.Pauses)
	}
	if sm.CAF != nil {
		t.Error("CAF should be unavailable for a silent speaker")
	}
	if !hasDiagnostic(sm, MetricCAF) {
		t.Error("missing caf diagnostic")
	}
	if !hasDiagnostic(sm, MetricPOS) {
		t.Error("missing pos diagnostic")
	}
}

func TestEngine_SpeakingRate(t *testing.T) {
	tr := types.Transcript{Turns: []types.Turn{
		// 4 words over 2000ms = 120 WPM.
		{Speaker: "A", Words: []types.Word{
			{Text: "a", Start: 0, End: 400}, {Text: "b", Start: 500, End: 900},
			{Text: "c", Start: 1000, End: 1400}, {Text: "d", Start: 1500, End: 2000},
		}},
		// 2 words over 1000ms = 120 WPM.
		{Speaker: "A", Words: []types.Word{
			{Text: "e", Start: 5000, End: 5400}, {Text: "f", Start: 5500, End: 6000},
		}},
	}}

	sm := New().Speaker(context.Background(), tr, "A", nil)
	if sm.SpeakingRate == nil {
		t.Fatalf("speaking rate unavailable: %+v", sm.Diagnostics)
	}
	if sm.SpeakingRate.Turns != 2 {
		t.Errorf("turns = %d, want 2", sm.SpeakingRate.Turns)
	}
	for name, got := range map[string]types.Ratio{
		"mean": sm.SpeakingRate.MeanWPM,
		"min":  sm.SpeakingRate.MinWPM,
		"max":  sm.SpeakingRate.MaxWPM,
	} {
		if diff := float64(got) - 120; diff < -1e-9 || diff > 1e-9 {
			t.Errorf("%s WPM = %v, want 120", name, got)
		}
	}
}

func TestEngine_POS(t *testing.T) {
	mock := &taggermock.Tagger{Categories: map[string]tagger.Category{
		"dog":   tagger.CategoryNoun,
		"runs":  tagger.CategoryVerb,
		"fast":  tagger.CategoryAdverb,
		"the":   tagger.CategoryDeterminer,
		"big":   tagger.CategoryAdjective,
		"a":     tagger.CategoryDeterminer,
		"house": tagger.CategoryNoun,
	}}
	words := timedWords(0, "the big dog runs fast")

	sm := New(WithTagger(mock)).Speaker(context.Background(), singleTurn("A", words), "A", nil)

	if sm.POS == nil {
		t.Fatalf("POS unavailable: %+v", sm.Diagnostics)
	}
	if sm.POS.OpenClass != 4 {
		t.Errorf("open class = %d, want 4", sm.POS.OpenClass)
	}
	if got := float64(sm.POS.LexicalDensity); got != 0.8 {
		t.Errorf("lexical density = %v, want 0.8", got)
	}
	if got := float64(sm.POS.NounRatio); got != 0.2 {
		t.Errorf("noun ratio = %v, want 0.2", got)
	}
}

func TestEngine_TaggerFailureIsIsolated(t *testing.T) {
	mock := &taggermock.Tagger{Err: tagger.ErrUnavailable}
	words := timedWords(0, "um i think um it is fine")

	sm := New(WithTagger(mock)).Speaker(context.Background(), singleTurn("A", words), "A", nil)

	if sm.POS != nil {
		t.Error("POS should be unavailable when the tagger errors")
	}
	if !hasDiagnostic(sm, MetricPOS) {
		t.Error("missing pos diagnostic")
	}
	if sm.Fillers == nil || sm.CAF == nil || sm.Pauses == nil {
		t.Errorf("fluency metrics must survive a tagger failure: %+v", sm.Diagnostics)
	}
	if got := float64(sm.CAF.FilledPauseRate); got < 28.5 || got > 28.6 {
		t.Errorf("filled pause rate = %v, want ≈28.57", got)
	}
}

type panickyTagger struct{}

func (panickyTagger) Tag(context.Context, []string) ([]tagger.TaggedToken, error) {
	panic("boom")
}

func TestEngine_PanicBecomesDiagnostic(t *testing.T) {
	words := timedWords(0, "hello there friend")

	sm := New(WithTagger(panickyTagger{})).Speaker(context.Background(), singleTurn("A", words), "A", nil)

	if sm.POS != nil {
		t.Error("POS should be unavailable after a panic")
	}
	if !hasDiagnostic(sm, MetricPOS) {
		t.Error("missing pos diagnostic")
	}
	if sm.CAF == nil {
		t.Error("remaining metrics must still be computed")
	}
}

func TestTUnits(t *testing.T) {
	t.Run("splits at sentence boundaries", func(t *testing.T) {
		words := timedWords(0, "i went home i ran")
		sentences := []types.Sentence{
			{Text: "I went home.", Start: 0, End: 800},
			{Text: "I ran.", Start: 900, End: 1400},
		}
		units := TUnits(words, sentences)
		if len(units) != 2 {
			t.Fatalf("units = %d, want 2", len(units))
		}
		if len(units[0]) != 3 || len(units[1]) != 2 {
			t.Errorf("unit sizes = %d,%d, want 3,2", len(units[0]), len(units[1]))
		}
	})

	t.Run("no boundaries yields one unit", func(t *testing.T) {
		units := TUnits(timedWords(0, "a b c"), nil)
		if len(units) != 1 || len(units[0]) != 3 {
			t.Fatalf("units = %v", units)
		}
	})

	t.Run("empty input yields none", func(t *testing.T) {
		if units := TUnits(nil, nil); units != nil {
			t.Fatalf("units = %v, want nil", units)
		}
	})
}
