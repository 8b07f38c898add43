// Package metrics computes a speaker's session metrics from an aligned
// transcript: speaking rate, pause and hesitation profiles, filler usage,
// vocabulary and n-gram statistics, part-of-speech distribution, and the
// complexity/accuracy/fluency (CAF) indices built on T-units.
//
// Every sub-computation is isolated. A failing or missing dependency (no
// tagger configured, a zero-word transcript, a panicking detector) leaves
// that sub-record nil, appends a diagnostic naming the metric and the
// reason, and never prevents the remaining metrics from being computed. The
// engine always returns a SessionMetrics value; partial results are valid
// results.
package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fluentlab/fluentlab/internal/detect"
	"github.com/fluentlab/fluentlab/internal/lexicon"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// Sub-record names used in diagnostics.
const (
	MetricSpeakingRate = "speaking_rate"
	MetricPauses       = "pauses"
	MetricHesitations  = "hesitations"
	MetricFillers      = "fillers"
	MetricVocabulary   = "vocabulary"
	MetricNGrams       = "ngrams"
	MetricPOS          = "pos"
	MetricCAF          = "caf"
)

// Diagnostic explains why a sub-record is missing or degraded.
type Diagnostic struct {
	Metric string `json:"metric"`
	Reason string `json:"reason"`
}

// SpeakingRate summarizes per-turn words-per-minute over turns with nonzero
// duration.
type SpeakingRate struct {
	MeanWPM types.Ratio `json:"mean_wpm"`
	MinWPM  types.Ratio `json:"min_wpm"`
	MaxWPM  types.Ratio `json:"max_wpm"`

	// Turns is the number of turns that contributed, i.e. had nonzero
	// duration.
	Turns int `json:"turns"`
}

// POSSummary is the part-of-speech distribution and the ratios derived
// from it. Present only when a tagging capability was configured and
// reachable.
type POSSummary struct {
	Counts map[tagger.Category]int `json:"counts"`

	// OpenClass is the number of noun, verb, adjective and adverb tokens.
	OpenClass int `json:"open_class"`

	LexicalDensity types.Ratio `json:"lexical_density"`
	NounRatio      types.Ratio `json:"noun_ratio"`
	VerbRatio      types.Ratio `json:"verb_ratio"`
	AdjectiveRatio types.Ratio `json:"adjective_ratio"`
}

// CAF holds the complexity/accuracy/fluency indices.
type CAF struct {
	TUnitCount       int `json:"t_unit_count"`
	SubordinateCount int `json:"subordinate_marker_count"`
	FalseStartCount  int `json:"false_start_count"`
	FragmentCount    int `json:"fragment_count"`

	// MeanLengthOfTUnit is total words / T-unit count.
	MeanLengthOfTUnit types.Ratio `json:"mean_length_of_t_unit"`

	// ClausesPerTUnit is (T-units + subordinate markers) / T-units.
	ClausesPerTUnit types.Ratio `json:"clauses_per_t_unit"`

	// MeanLengthOfRun is total words / (long-pause count + 1).
	MeanLengthOfRun types.Ratio `json:"mean_length_of_run"`

	// FilledPauseRate is filler tokens / total words × 100.
	FilledPauseRate types.Ratio `json:"filled_pause_rate_pct"`

	// ErrorFreeTUnitPct is the share of T-units free of false starts and
	// fragments, floored at zero.
	ErrorFreeTUnitPct types.Ratio `json:"error_free_t_unit_pct"`
}

// SessionMetrics is one speaker's complete metrics record. Nil sub-records
// were unavailable; Diagnostics holds one entry per missing or degraded
// sub-record.
type SessionMetrics struct {
	Speaker    string `json:"speaker"`
	TotalWords int    `json:"total_words"`
	TotalTurns int    `json:"total_turns"`

	// TalkTimeMS is the sum of the speaker's word durations.
	TalkTimeMS int64 `json:"talk_time_ms"`

	SpeakingRate *SpeakingRate            `json:"speaking_rate,omitempty"`
	Pauses       *detect.PauseResult      `json:"pauses,omitempty"`
	Hesitations  *detect.HesitationResult `json:"hesitations,omitempty"`
	Fillers      *detect.FillerResult     `json:"fillers,omitempty"`
	Vocabulary   *detect.VocabularyResult `json:"vocabulary,omitempty"`
	NGrams       *detect.NGramResult      `json:"ngrams,omitempty"`
	POS          *POSSummary              `json:"pos,omitempty"`
	CAF          *CAF                     `json:"caf,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func (sm *SessionMetrics) diagnose(metric, reason string) {
	sm.Diagnostics = append(sm.Diagnostics, Diagnostic{Metric: metric, Reason: reason})
}

// Engine runs the pattern detectors and CAF formulas for one speaker at a
// time. It is stateless apart from its configuration and safe for
// concurrent use.
type Engine struct {
	hesitationMS  int64
	longPauseMS   int64
	fillerLexicon []string
	formulaicMin  int
	minConfidence float64

	table      *lexicon.Table
	tagger     tagger.Tagger
	lemmatizer tagger.Lemmatizer

	logger *slog.Logger
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithHesitationThreshold sets the inter-word gap (ms) above which a
// hesitation is recorded. Default: 800.
func WithHesitationThreshold(ms int64) Option {
	return func(e *Engine) {
		if ms > 0 {
			e.hesitationMS = ms
		}
	}
}

// WithLongPauseThreshold sets the inter-word gap (ms) above which a pause
// counts as long. Default: 1000.
func WithLongPauseThreshold(ms int64) Option {
	return func(e *Engine) {
		if ms > 0 {
			e.longPauseMS = ms
		}
	}
}

// WithFillerLexicon replaces the default filled-pause lexicon.
func WithFillerLexicon(words []string) Option {
	return func(e *Engine) {
		if len(words) > 0 {
			e.fillerLexicon = words
		}
	}
}

// WithFormulaicMinCount sets the occurrence threshold for formulaic
// sequences. Default: 3.
func WithFormulaicMinCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.formulaicMin = n
		}
	}
}

// WithMinWordConfidence sets the confidence floor for vocabulary analysis.
// Default: 0.85.
func WithMinWordConfidence(c float64) Option {
	return func(e *Engine) {
		if c > 0 {
			e.minConfidence = c
		}
	}
}

// WithLexicon sets the reference word table for whitelist resolution.
func WithLexicon(t *lexicon.Table) Option {
	return func(e *Engine) { e.table = t }
}

// WithTagger sets the part-of-speech tagging capability.
func WithTagger(t tagger.Tagger) Option {
	return func(e *Engine) { e.tagger = t }
}

// WithLemmatizer sets the lemmatization capability.
func WithLemmatizer(l tagger.Lemmatizer) Option {
	return func(e *Engine) { e.lemmatizer = l }
}

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		hesitationMS:  detect.DefaultHesitationThresholdMS,
		longPauseMS:   detect.DefaultLongPauseThresholdMS,
		fillerLexicon: detect.DefaultFillerWords,
		formulaicMin:  detect.DefaultFormulaicMinCount,
		minConfidence: detect.DefaultMinWordConfidence,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Speaker computes the SessionMetrics for one speaker label of an aligned
// transcript. sentences are the punctuated-pass sentence boundaries used
// for T-unit splitting. Speaker never fails; unavailable sub-records are
// reported through the Diagnostics list.
func (e *Engine) Speaker(ctx context.Context, tr types.Transcript, speaker string, sentences []types.Sentence) *SessionMetrics {
	words := tr.SpeakerWords(speaker)
	turns := tr.SpeakerTurns(speaker)

	sm := &SessionMetrics{
		Speaker:    speaker,
		TotalWords: len(words),
		TotalTurns: len(turns),
	}
	for _, w := range words {
		sm.TalkTimeMS += w.Duration()
	}

	e.run(sm, MetricSpeakingRate, func() error {
		rate, err := speakingRate(turns)
		if err != nil {
			return err
		}
		sm.SpeakingRate = rate
		return nil
	})

	e.run(sm, MetricPauses, func() error {
		p := detect.Pauses(words, e.longPauseMS)
		sm.Pauses = &p
		return nil
	})

	e.run(sm, MetricHesitations, func() error {
		h := detect.Hesitations(words, e.hesitationMS)
		sm.Hesitations = &h
		return nil
	})

	tokens := detect.Tokens(words)

	e.run(sm, MetricFillers, func() error {
		f := detect.Fillers(tokens, e.fillerLexicon)
		sm.Fillers = &f
		return nil
	})

	e.run(sm, MetricVocabulary, func() error {
		v := detect.Vocabulary(ctx, words, e.minConfidence, e.table, e.lemmatizer)
		if !v.LemmasAvailable && v.LemmaUnavailableReason != "" {
			sm.diagnose(MetricVocabulary, "lemmas: "+v.LemmaUnavailableReason)
		}
		sm.Vocabulary = &v
		return nil
	})

	e.run(sm, MetricNGrams, func() error {
		n := detect.NGrams(tokens, e.formulaicMin)
		sm.NGrams = &n
		return nil
	})

	e.run(sm, MetricPOS, func() error {
		pos, err := e.posSummary(ctx, tokens)
		if err != nil {
			return err
		}
		sm.POS = pos
		return nil
	})

	e.run(sm, MetricCAF, func() error {
		caf, err := e.caf(words, sentences, sm)
		if err != nil {
			return err
		}
		sm.CAF = caf
		return nil
	})

	if len(sm.Diagnostics) > 0 {
		e.logger.Debug("metrics computed with diagnostics",
			"speaker", speaker, "diagnostics", len(sm.Diagnostics))
	}
	return sm
}

// run executes one isolated sub-computation. Errors and panics become
// diagnostics on sm; they never propagate.
func (e *Engine) run(sm *SessionMetrics, metric string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("metric sub-computation panicked", "metric", metric, "panic", r)
			sm.diagnose(metric, fmt.Sprintf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		sm.diagnose(metric, err.Error())
	}
}

func speakingRate(turns []types.Turn) (*SpeakingRate, error) {
	var rate SpeakingRate
	for _, t := range turns {
		dur := t.Duration()
		if dur <= 0 || len(t.Words) == 0 {
			continue
		}
		wpm := float64(len(t.Words)) / (float64(dur) / 60000)
		if rate.Turns == 0 || types.Ratio(wpm) < rate.MinWPM {
			rate.MinWPM = types.Ratio(wpm)
		}
		if types.Ratio(wpm) > rate.MaxWPM {
			rate.MaxWPM = types.Ratio(wpm)
		}
		rate.MeanWPM += types.Ratio(wpm)
		rate.Turns++
	}
	if rate.Turns > 0 {
		rate.MeanWPM /= types.Ratio(rate.Turns)
	}
	return &rate, nil
}

func (e *Engine) posSummary(ctx context.Context, tokens []string) (*POSSummary, error) {
	if e.tagger == nil {
		return nil, fmt.Errorf("%w: no tagger configured", tagger.ErrUnavailable)
	}
	clean := detect.NormalizedTokens(tokens)
	if len(clean) == 0 {
		return nil, fmt.Errorf("no words to tag")
	}
	tagged, err := e.tagger.Tag(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("tagging failed: %w", err)
	}

	sum := &POSSummary{Counts: make(map[tagger.Category]int)}
	for _, t := range tagged {
		sum.Counts[t.Category]++
		if t.Category.OpenClass() {
			sum.OpenClass++
		}
	}
	total := float64(len(tagged))
	sum.LexicalDensity = types.Ratio(float64(sum.OpenClass) / total)
	sum.NounRatio = types.Ratio(float64(sum.Counts[tagger.CategoryNoun]) / total)
	sum.VerbRatio = types.Ratio(float64(sum.Counts[tagger.CategoryVerb]) / total)
	sum.AdjectiveRatio = types.Ratio(float64(sum.Counts[tagger.CategoryAdjective]) / total)
	return sum, nil
}

// caf combines T-unit structure with the pause and filler sub-records. It
// reads sm.Pauses and sm.Fillers, so it must run after those detectors; a
// missing prerequisite makes the whole CAF record unavailable.
func (e *Engine) caf(words []types.Word, sentences []types.Sentence, sm *SessionMetrics) (*CAF, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("no words spoken")
	}
	units := TUnits(words, sentences)
	unitTokens := tunitTokens(units)

	var tokenCount int
	var allTokens []string
	for _, ut := range unitTokens {
		tokenCount += len(ut)
		allTokens = append(allTokens, ut...)
	}
	if tokenCount == 0 {
		return nil, fmt.Errorf("no analyzable tokens")
	}

	markers := detect.SubordinateMarkers(allTokens)
	starts := detect.FalseStarts(unitTokens)

	caf := &CAF{
		TUnitCount:       len(units),
		SubordinateCount: markers.Count,
		FalseStartCount:  starts.FalseStartCount,
		FragmentCount:    starts.FragmentCount,
	}
	n := float64(caf.TUnitCount)
	caf.MeanLengthOfTUnit = types.Ratio(float64(tokenCount) / n)
	caf.ClausesPerTUnit = types.Ratio((n + float64(markers.Count)) / n)

	if sm.Pauses != nil {
		caf.MeanLengthOfRun = types.Ratio(float64(tokenCount) / float64(sm.Pauses.LongCount+1))
	} else {
		return nil, fmt.Errorf("pause sub-record unavailable")
	}
	if sm.Fillers != nil {
		caf.FilledPauseRate = types.Ratio(float64(sm.Fillers.FillerTokens) / float64(tokenCount) * 100)
	} else {
		return nil, fmt.Errorf("filler sub-record unavailable")
	}

	errorFree := 100 * (n - float64(starts.FalseStartCount+starts.FragmentCount)) / n
	if errorFree < 0 {
		errorFree = 0
	}
	caf.ErrorFreeTUnitPct = types.Ratio(errorFree)
	return caf, nil
}
