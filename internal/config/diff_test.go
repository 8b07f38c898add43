package config

import "testing"

func TestDiff(t *testing.T) {
	t.Run("no changes", func(t *testing.T) {
		d := Diff(Default(), Default())
		if d.LogLevelChanged || d.AnalysisChanged || d.RestartRequired {
			t.Fatalf("diff of identical configs = %+v", d)
		}
	})

	t.Run("log level", func(t *testing.T) {
		next := Default()
		next.Logging.Level = LogDebug
		d := Diff(Default(), next)
		if !d.LogLevelChanged || d.NewLogLevel != LogDebug {
			t.Fatalf("diff = %+v", d)
		}
		if d.RestartRequired {
			t.Error("log level is hot-reloadable")
		}
	})

	t.Run("analysis thresholds", func(t *testing.T) {
		next := Default()
		next.Analysis.LongPauseThresholdMS = 1500
		d := Diff(Default(), next)
		if !d.AnalysisChanged {
			t.Fatalf("diff = %+v", d)
		}
		if d.RestartRequired {
			t.Error("threshold changes are tracked separately from restart-only fields")
		}
	})

	t.Run("filler lexicon", func(t *testing.T) {
		next := Default()
		next.Analysis.FillerWords = []string{"um", "eh"}
		if d := Diff(Default(), next); !d.AnalysisChanged {
			t.Fatalf("diff = %+v", d)
		}
	})

	t.Run("tagger endpoint requires restart", func(t *testing.T) {
		next := Default()
		next.Tagger.BaseURL = "http://localhost:9021"
		d := Diff(Default(), next)
		if !d.RestartRequired {
			t.Fatalf("diff = %+v", d)
		}
		if d.AnalysisChanged || d.LogLevelChanged {
			t.Errorf("unrelated flags set: %+v", d)
		}
	})
}
