// Package report assembles the terminal session payload and hands it to a
// pluggable sink. The sink is the external persistence boundary: the engine
// treats the encoded report as opaque once written.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/fluentlab/fluentlab/internal/compare"
	"github.com/fluentlab/fluentlab/internal/metrics"
)

// AlignmentSummary carries the alignment-stage anomaly accounting into the
// report.
type AlignmentSummary struct {
	// Anomalies counts words attributed by the nearest-segment fallback
	// or labeled unknown.
	Anomalies int `json:"anomalies"`

	// MalformedSegments counts out-of-order diarization segment pairs
	// repaired before alignment.
	MalformedSegments int `json:"malformed_segments"`
}

// Report is the complete output record for one session. Ratio fields are
// rounded to 4 significant decimal digits on encoding.
type Report struct {
	ReportID    string    `json:"report_id"`
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Speakers    map[string]*metrics.SessionMetrics `json:"speakers"`
	Comparative *compare.Result                    `json:"comparative,omitempty"`
	Alignment   AlignmentSummary                   `json:"alignment"`

	// Diagnostics holds session-level notes (e.g. a comparative record
	// that could not be computed). Per-speaker diagnostics live on the
	// speaker records.
	Diagnostics []metrics.Diagnostic `json:"diagnostics,omitempty"`
}

// New assembles a report with a fresh ID and the current UTC time.
func New(sessionID string, speakers map[string]*metrics.SessionMetrics) *Report {
	return &Report{
		ReportID:    xid.New().String(),
		SessionID:   sessionID,
		GeneratedAt: time.Now().UTC(),
		Speakers:    speakers,
	}
}

// Diagnose appends a session-level diagnostic.
func (r *Report) Diagnose(subject, reason string) {
	r.Diagnostics = append(r.Diagnostics, metrics.Diagnostic{Metric: subject, Reason: reason})
}

// Sink receives completed reports.
//
// Implementations must be safe for concurrent use: sessions are processed
// in parallel and share one sink.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// Compile-time interface assertions.
var (
	_ Sink = (*WriterSink)(nil)
	_ Sink = (*DirSink)(nil)
)

// WriterSink encodes each report as one indented JSON document to a shared
// writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements [Sink].
func (s *WriterSink) Write(_ context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encoding session %s: %w", r.SessionID, err)
	}
	return nil
}

// DirSink writes each report to <dir>/<session_id>.json. The write goes
// through a temporary file and a rename, so a report file is either absent
// or complete.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed and returns a sink over it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: creating output dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Write implements [Sink].
func (s *DirSink) Write(_ context.Context, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encoding session %s: %w", r.SessionID, err)
	}

	final := filepath.Join(s.dir, r.SessionID+".json")
	tmp, err := os.CreateTemp(s.dir, r.SessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("report: writing session %s: %w", r.SessionID, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("report: writing session %s: %w", r.SessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("report: writing session %s: %w", r.SessionID, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("report: writing session %s: %w", r.SessionID, err)
	}
	return nil
}
