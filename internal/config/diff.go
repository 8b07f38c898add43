package config

import "slices"

// ConfigDiff describes what changed between two configs. Only fields that
// can be safely hot-reloaded are tracked; changes to anything else require
// a restart and are reported through RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AnalysisChanged is true when any detector threshold or the filler
	// lexicon changed. The engine reads these once at startup, so the new
	// values take effect on the next invocation.
	AnalysisChanged bool

	// RestartRequired is true when a non-reloadable field (lexicon paths,
	// tagger endpoint, output, workers, session labels) changed.
	RestartRequired bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Logging.Level != new.Logging.Level {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Logging.Level
	}

	if old.Analysis.HesitationThresholdMS != new.Analysis.HesitationThresholdMS ||
		old.Analysis.LongPauseThresholdMS != new.Analysis.LongPauseThresholdMS ||
		old.Analysis.FormulaicMinCount != new.Analysis.FormulaicMinCount ||
		old.Analysis.MinWordConfidence != new.Analysis.MinWordConfidence ||
		!slices.Equal(old.Analysis.FillerWords, new.Analysis.FillerWords) {
		d.AnalysisChanged = true
	}

	if old.Session != new.Session ||
		old.Lexicon != new.Lexicon ||
		old.Tagger != new.Tagger ||
		old.Output != new.Output ||
		old.Workers != new.Workers {
		d.RestartRequired = true
	}

	return d
}
