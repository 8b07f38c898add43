// Package compare derives the tutor/student comparative record from two
// speakers' session metrics over the same aligned transcript.
package compare

import (
	"fmt"

	"github.com/fluentlab/fluentlab/internal/detect"
	"github.com/fluentlab/fluentlab/internal/metrics"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// Result is the comparative record for one session. Ratios are expressed
// from the student's perspective.
type Result struct {
	Student string `json:"student"`
	Tutor   string `json:"tutor"`

	// VocabularyOverlap is |intersection| / |union| of the two speakers'
	// lemma sets. Valid only when VocabularyOverlapAvailable.
	VocabularyOverlap          types.Ratio `json:"vocabulary_overlap,omitempty"`
	VocabularyOverlapAvailable bool        `json:"vocabulary_overlap_available"`
	VocabularyOverlapReason    string      `json:"vocabulary_overlap_reason,omitempty"`

	// TalkTimeRatio is the student's total word duration over the whole
	// session's word duration (all speakers, attribution fallbacks
	// included).
	TalkTimeRatio types.Ratio `json:"talk_time_ratio"`

	// RelativeWPM is student mean WPM over tutor mean WPM. Zero when the
	// tutor rate is unknown.
	RelativeWPM types.Ratio `json:"relative_wpm"`

	// Average word lengths in characters, punctuation excluded.
	StudentAvgWordLength types.Ratio `json:"student_avg_word_length"`
	TutorAvgWordLength   types.Ratio `json:"tutor_avg_word_length"`

	// TypeTokenRatioGap is student TTR minus tutor TTR.
	TypeTokenRatioGap types.Ratio `json:"type_token_ratio_gap"`

	// NaturalnessGap is the student's bigram-naturalness score minus the
	// tutor's.
	NaturalnessGap float64 `json:"naturalness_gap"`

	// BigramUptakePct is the percentage of the student's distinct bigrams
	// that also occur in the tutor's speech.
	BigramUptakePct types.Ratio `json:"bigram_uptake_pct"`
}

// Compare builds the comparative record. It fails only when either speaker
// has zero recorded words; every other gap degrades the affected field.
func Compare(tr types.Transcript, student, tutor *metrics.SessionMetrics) (*Result, error) {
	if student.TotalWords == 0 {
		return nil, fmt.Errorf("compare: speaker %q has no recorded words", student.Speaker)
	}
	if tutor.TotalWords == 0 {
		return nil, fmt.Errorf("compare: speaker %q has no recorded words", tutor.Speaker)
	}

	res := &Result{Student: student.Speaker, Tutor: tutor.Speaker}

	res.vocabularyOverlap(student, tutor)

	var sessionMS int64
	for _, w := range tr.Words() {
		sessionMS += w.Duration()
	}
	if sessionMS > 0 {
		res.TalkTimeRatio = types.Ratio(float64(student.TalkTimeMS) / float64(sessionMS))
	}

	if student.SpeakingRate != nil && tutor.SpeakingRate != nil && tutor.SpeakingRate.MeanWPM > 0 {
		res.RelativeWPM = student.SpeakingRate.MeanWPM / tutor.SpeakingRate.MeanWPM
	}

	res.StudentAvgWordLength = avgWordLength(tr.SpeakerWords(student.Speaker))
	res.TutorAvgWordLength = avgWordLength(tr.SpeakerWords(tutor.Speaker))

	if student.Vocabulary != nil && tutor.Vocabulary != nil {
		res.TypeTokenRatioGap = student.Vocabulary.TypeTokenRatio - tutor.Vocabulary.TypeTokenRatio
	}
	if student.NGrams != nil && tutor.NGrams != nil {
		res.NaturalnessGap = student.NGrams.Naturalness - tutor.NGrams.Naturalness
		res.BigramUptakePct = bigramUptake(student.NGrams, tutor.NGrams)
	}
	return res, nil
}

func (r *Result) vocabularyOverlap(student, tutor *metrics.SessionMetrics) {
	sv, tv := student.Vocabulary, tutor.Vocabulary
	if sv == nil || tv == nil {
		r.VocabularyOverlapReason = "vocabulary sub-record unavailable"
		return
	}
	if !sv.LemmasAvailable || !tv.LemmasAvailable {
		r.VocabularyOverlapReason = "lemma sets unavailable"
		return
	}

	inter, union := 0, len(tv.LemmaSet)
	for lemma := range sv.LemmaSet {
		if _, ok := tv.LemmaSet[lemma]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		r.VocabularyOverlapReason = "both lemma sets empty"
		return
	}
	r.VocabularyOverlap = types.Ratio(float64(inter) / float64(union))
	r.VocabularyOverlapAvailable = true
}

func avgWordLength(words []types.Word) types.Ratio {
	var chars, count int
	for _, w := range words {
		n := detect.Normalize(w.Text)
		if n == "" {
			continue
		}
		chars += len([]rune(n))
		count++
	}
	if count == 0 {
		return 0
	}
	return types.Ratio(float64(chars) / float64(count))
}

// bigramUptake measures how much of the student's distinct bigram output
// also appears in the tutor's speech, as a percentage.
func bigramUptake(student, tutor *detect.NGramResult) types.Ratio {
	sb := student.Frequencies[2]
	if len(sb) == 0 {
		return 0
	}
	tutorSet := make(map[string]struct{}, len(tutor.Frequencies[2]))
	for _, b := range tutor.Frequencies[2] {
		tutorSet[b.Phrase] = struct{}{}
	}
	shared := 0
	for _, b := range sb {
		if _, ok := tutorSet[b.Phrase]; ok {
			shared++
		}
	}
	return types.Ratio(float64(shared) / float64(len(sb)) * 100)
}
