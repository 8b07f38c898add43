package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fluentlab/fluentlab/internal/metrics"
	"github.com/fluentlab/fluentlab/pkg/types"
)

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := New("s1", nil)
	b := New("s1", nil)
	if a.ReportID == "" || a.ReportID == b.ReportID {
		t.Fatalf("report IDs not unique: %q vs %q", a.ReportID, b.ReportID)
	}
	if a.SessionID != "s1" {
		t.Errorf("session ID = %q", a.SessionID)
	}
	if a.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestWriterSink_RoundsRatios(t *testing.T) {
	r := New("s1", map[string]*metrics.SessionMetrics{
		"student": {
			Speaker: "student",
			CAF: &metrics.CAF{
				TUnitCount:        3,
				MeanLengthOfTUnit: types.Ratio(4.0 / 3.0), // 1.333333…
			},
		},
	})

	var buf bytes.Buffer
	if err := NewWriterSink(&buf).Write(context.Background(), r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"mean_length_of_t_unit": 1.333`) {
		t.Errorf("MLT not rounded to 4 significant digits:\n%s", out)
	}
	if strings.Contains(out, "1.3333333") {
		t.Errorf("unrounded ratio leaked into output:\n%s", out)
	}
}

func TestDirSink_WritesPerSessionFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}

	r := New("session-42", map[string]*metrics.SessionMetrics{
		"student": {Speaker: "student", TotalWords: 7},
	})
	r.Diagnose("comparative", "tutor had no recorded words")

	if err := sink.Write(context.Background(), r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "reports", "session-42.json"))
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded["session_id"] != "session-42" {
		t.Errorf("session_id = %v", decoded["session_id"])
	}
	if _, ok := decoded["report_id"].(string); !ok {
		t.Error("missing report_id")
	}
	diags, ok := decoded["diagnostics"].([]any)
	if !ok || len(diags) != 1 {
		t.Errorf("diagnostics = %v", decoded["diagnostics"])
	}
}
