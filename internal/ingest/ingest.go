// Package ingest loads the two externally produced transcription streams
// for a session and validates their structure before alignment.
//
// A session directory holds:
//
//	raw.json      — the raw, disfluency-preserving word stream:
//	                {"words": [{"text","start","end","confidence","is_final"}]}
//	diarized.json — the punctuated diarization pass:
//	                {"utterances": [{"speaker","start","end"}],
//	                 "sentences":  [{"text","start","end"}]}
//	session.json  — optional identity overrides:
//	                {"session_id","tutor_label","student_label"}
//
// Timestamps are millisecond offsets from the start of the session audio.
// Validation is the only hard failure in the pipeline: a record with a
// negative timestamp, an end before its start, or an out-of-order position
// rejects the whole session with an error naming the offending record.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fluentlab/fluentlab/pkg/types"
)

// Stream file names within a session directory.
const (
	RawFile      = "raw.json"
	DiarizedFile = "diarized.json"
	SessionFile  = "session.json"
)

// ValidationError rejects a session whose input streams are structurally
// invalid. It names the offending record so the upstream producer can be
// debugged.
type ValidationError struct {
	// Stream is the human-readable stream name ("raw word", "diarization
	// segment", "sentence").
	Stream string

	// Index is the record's position within its stream.
	Index int

	// Reason describes the violation.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ingest: %s %d: %s", e.Stream, e.Index, e.Reason)
}

type rawDoc struct {
	Words []types.Word `json:"words"`
}

type diarizedDoc struct {
	Utterances []types.Segment  `json:"utterances"`
	Sentences  []types.Sentence `json:"sentences"`
}

type sessionDoc struct {
	SessionID    string `json:"session_id"`
	TutorLabel   string `json:"tutor_label"`
	StudentLabel string `json:"student_label"`
}

// LoadDir reads and validates one session directory. tutorLabel and
// studentLabel are the configured defaults; session.json, when present,
// overrides them. The session ID defaults to the directory base name.
func LoadDir(dir, tutorLabel, studentLabel string) (*types.SessionInput, error) {
	var raw rawDoc
	if err := readJSON(filepath.Join(dir, RawFile), &raw); err != nil {
		return nil, err
	}
	var dia diarizedDoc
	if err := readJSON(filepath.Join(dir, DiarizedFile), &dia); err != nil {
		return nil, err
	}

	in := &types.SessionInput{
		SessionID:    filepath.Base(dir),
		TutorLabel:   tutorLabel,
		StudentLabel: studentLabel,
		Words:        raw.Words,
		Segments:     dia.Utterances,
		Sentences:    dia.Sentences,
	}

	sessionPath := filepath.Join(dir, SessionFile)
	if _, err := os.Stat(sessionPath); err == nil {
		var sess sessionDoc
		if err := readJSON(sessionPath, &sess); err != nil {
			return nil, err
		}
		if sess.SessionID != "" {
			in.SessionID = sess.SessionID
		}
		if sess.TutorLabel != "" {
			in.TutorLabel = sess.TutorLabel
		}
		if sess.StudentLabel != "" {
			in.StudentLabel = sess.StudentLabel
		}
	}

	if err := Validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ingest: parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks the structural invariants of all three streams. The word
// stream must be strictly ordered by start; segments and sentences must be
// ordered too, and every record needs non-negative timestamps with end not
// before start.
func Validate(in *types.SessionInput) error {
	var prev int64 = -1
	for i, w := range in.Words {
		if err := checkInterval("raw word", i, w.Start, w.End); err != nil {
			return err
		}
		if w.Start < prev {
			return &ValidationError{Stream: "raw word", Index: i,
				Reason: fmt.Sprintf("start %d before preceding word's start %d", w.Start, prev)}
		}
		prev = w.Start
	}

	prev = -1
	for i, s := range in.Segments {
		if err := checkInterval("diarization segment", i, s.Start, s.End); err != nil {
			return err
		}
		if s.Speaker == "" {
			return &ValidationError{Stream: "diarization segment", Index: i,
				Reason: "empty speaker label"}
		}
		if s.Start < prev {
			return &ValidationError{Stream: "diarization segment", Index: i,
				Reason: fmt.Sprintf("start %d before preceding segment's start %d", s.Start, prev)}
		}
		prev = s.Start
	}

	prev = -1
	for i, s := range in.Sentences {
		if err := checkInterval("sentence", i, s.Start, s.End); err != nil {
			return err
		}
		if s.Start < prev {
			return &ValidationError{Stream: "sentence", Index: i,
				Reason: fmt.Sprintf("start %d before preceding sentence's start %d", s.Start, prev)}
		}
		prev = s.Start
	}
	return nil
}

func checkInterval(stream string, i int, start, end int64) error {
	if start < 0 {
		return &ValidationError{Stream: stream, Index: i,
			Reason: fmt.Sprintf("negative start %d", start)}
	}
	if end < start {
		return &ValidationError{Stream: stream, Index: i,
			Reason: fmt.Sprintf("end %d before start %d", end, start)}
	}
	return nil
}
