// Package lexicon provides the read-only reference word-frequency table
// consulted by the vocabulary detector.
//
// The table is built from standard frequency lists (an NGSL-style lemmatized
// teaching list and a COCA-style ranked vocabulary list), loaded once at
// process start and shared immutably by all concurrent sessions.
//
// Unknown tokens are resolved through a three-stage chain:
//
//  1. exact table hit,
//  2. heuristic suffix-stripper lemma (s, es, ed, ing, d, doubled-consonant
//     and -ies→y handling) found in the table,
//  3. fuzzy match by Jaro-Winkler similarity (≥ 0.85, words of length ≥ 4),
//     which credits near-misses caused by mistranscribed or mispronounced
//     words.
package lexicon

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultFuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy
// table hit.
const DefaultFuzzyThreshold = 0.85

// minFuzzyLength guards the fuzzy stage against over-matching short words.
const minFuzzyLength = 4

// Table is an immutable reference word table. All methods are safe for
// concurrent use — the Table is read-only after construction.
type Table struct {
	teaching map[string]bool // NGSL-style teaching list; also the academic flag
	general  map[string]bool // COCA-style general frequency list
	all      []string        // combined word list for fuzzy scanning

	fuzzyThreshold float64
}

// Option is a functional option for configuring a [Table].
type Option func(*Table)

// WithFuzzyThreshold overrides the minimum Jaro-Winkler similarity for the
// fuzzy resolution stage. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(t *Table) {
		if threshold > 0 {
			t.fuzzyThreshold = threshold
		}
	}
}

// New builds a Table directly from word sets. Intended for tests and for
// callers that assemble their own lists; production code normally uses
// [LoadFiles].
func New(teaching, general []string, opts ...Option) *Table {
	t := &Table{
		teaching:       make(map[string]bool, len(teaching)),
		general:        make(map[string]bool, len(general)),
		fuzzyThreshold: DefaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(t)
	}
	for _, w := range teaching {
		t.add(strings.ToLower(w), true)
	}
	for _, w := range general {
		t.add(strings.ToLower(w), false)
	}
	return t
}

func (t *Table) add(word string, teaching bool) {
	if word == "" {
		return
	}
	if teaching {
		if !t.teaching[word] {
			t.teaching[word] = true
			if !t.general[word] {
				t.all = append(t.all, word)
			}
		}
		return
	}
	if !t.general[word] {
		t.general[word] = true
		if !t.teaching[word] {
			t.all = append(t.all, word)
		}
	}
}

// LoadFiles loads a Table from the configured list files. Either path may be
// empty; an empty Table is legal and simply resolves nothing.
func LoadFiles(teachingPath, generalPath string, opts ...Option) (*Table, error) {
	t := New(nil, nil, opts...)

	if teachingPath != "" {
		f, err := os.Open(teachingPath)
		if err != nil {
			return nil, fmt.Errorf("lexicon: open teaching list %q: %w", teachingPath, err)
		}
		err = t.loadTeaching(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("lexicon: parse teaching list %q: %w", teachingPath, err)
		}
	}
	if generalPath != "" {
		f, err := os.Open(generalPath)
		if err != nil {
			return nil, fmt.Errorf("lexicon: open general list %q: %w", generalPath, err)
		}
		err = t.loadGeneral(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("lexicon: parse general list %q: %w", generalPath, err)
		}
	}
	return t, nil
}

// loadTeaching reads an NGSL-style CSV: every non-comment cell is a word.
func (t *Table) loadTeaching(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 || strings.HasPrefix(row[0], "#") {
			continue
		}
		for _, cell := range row {
			t.add(strings.ToLower(strings.TrimSpace(cell)), true)
		}
	}
}

// loadGeneral reads a COCA-style ranked list: whitespace-separated columns
// with the word in the third column. Header and comment lines are skipped.
func (t *Table) loadGeneral(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "RANK") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		word := strings.ToLower(parts[2])
		if isAlpha(word) {
			t.add(word, false)
		}
	}
	return sc.Err()
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Len returns the number of distinct words in the table.
func (t *Table) Len() int { return len(t.all) }

// Contains reports whether the lower-cased word is in either list.
func (t *Table) Contains(word string) bool {
	w := strings.ToLower(word)
	return t.teaching[w] || t.general[w]
}

// IsAcademic reports whether the word belongs to the teaching list.
func (t *Table) IsAcademic(word string) bool {
	return t.teaching[strings.ToLower(word)]
}

// Lemmatize returns the heuristic stem of word: the word itself when the
// table already contains it, otherwise the first suffix-stripped form found
// in the table, otherwise the word unchanged.
func (t *Table) Lemmatize(word string) string {
	w := strings.ToLower(word)
	if t.Contains(w) {
		return w
	}
	for _, suffix := range []string{"s", "ed", "ing", "es", "d"} {
		if !strings.HasSuffix(w, suffix) {
			continue
		}
		stem := w[:len(w)-len(suffix)]
		if t.Contains(stem) {
			return stem
		}
		// Doubled final consonant: "stopped" → "stopp" → "stop".
		if len(stem) > 2 && stem[len(stem)-1] == stem[len(stem)-2] {
			if undoubled := stem[:len(stem)-1]; t.Contains(undoubled) {
				return undoubled
			}
		}
		// -ies → y: "studies" → "study".
		if suffix == "es" && strings.HasSuffix(w, "ies") {
			if y := w[:len(w)-3] + "y"; t.Contains(y) {
				return y
			}
		}
	}
	return w
}

// Resolve maps word to its canonical table form: exact hit, then lemma hit,
// then fuzzy hit. ok is false when no stage produced a table word.
func (t *Table) Resolve(word string) (resolved string, ok bool) {
	w := strings.ToLower(word)
	if t.Contains(w) {
		return w, true
	}
	if lemma := t.Lemmatize(w); t.Contains(lemma) {
		return lemma, true
	}
	if f := t.fuzzy(w); f != "" {
		return f, true
	}
	return "", false
}

// fuzzy returns the best Jaro-Winkler match at or above the threshold, or ""
// when none qualifies. Short words are never fuzzy-matched.
func (t *Table) fuzzy(word string) string {
	if len(word) < minFuzzyLength {
		return ""
	}
	best := ""
	bestScore := t.fuzzyThreshold
	for _, cand := range t.all {
		if s := matchr.JaroWinkler(word, cand, false); s > bestScore || (s == bestScore && best == "") {
			best, bestScore = cand, s
		}
	}
	return best
}
