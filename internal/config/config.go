// Package config provides the configuration schema, loader, and file
// watcher for the fluentlab analysis engine.
package config

import (
	"log/slog"

	"github.com/fluentlab/fluentlab/internal/detect"
	"github.com/fluentlab/fluentlab/internal/lexicon"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l to the corresponding [slog.Level]. Unknown values map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Session  SessionConfig  `yaml:"session"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Lexicon  LexiconConfig  `yaml:"lexicon"`
	Tagger   TaggerConfig   `yaml:"tagger"`
	Output   OutputConfig   `yaml:"output"`

	// Workers is the number of sessions processed concurrently.
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level LogLevel `yaml:"level"`
}

// SessionConfig holds the default diarization labels of the two
// participants. A session.json file next to the streams overrides them.
type SessionConfig struct {
	TutorLabel   string `yaml:"tutor_label"`
	StudentLabel string `yaml:"student_label"`
}

// AnalysisConfig holds the detector thresholds. The metrics engine reads
// them once at startup; edits apply to the next invocation.
type AnalysisConfig struct {
	// HesitationThresholdMS is the inter-word gap above which a
	// hesitation is recorded.
	HesitationThresholdMS int64 `yaml:"hesitation_threshold_ms"`

	// LongPauseThresholdMS is the inter-word gap above which a pause
	// counts as long and splits a run.
	LongPauseThresholdMS int64 `yaml:"long_pause_threshold_ms"`

	// FormulaicMinCount is the occurrence threshold for formulaic
	// sequences.
	FormulaicMinCount int `yaml:"formulaic_min_count"`

	// MinWordConfidence is the transcription-confidence floor for
	// vocabulary analysis.
	MinWordConfidence float64 `yaml:"min_word_confidence"`

	// FillerWords overrides the built-in filled-pause lexicon when
	// non-empty.
	FillerWords []string `yaml:"filler_words"`
}

// LexiconConfig points at the reference word-frequency lists. Empty paths
// disable whitelist resolution.
type LexiconConfig struct {
	// TeachingList is the path to the NGSL-style CSV teaching list.
	TeachingList string `yaml:"teaching_list"`

	// GeneralList is the path to the COCA-style ranked frequency list.
	GeneralList string `yaml:"general_list"`

	// FuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy
	// table hit.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// TaggerConfig configures the external part-of-speech tagging capability.
// An empty BaseURL leaves the capability unconfigured; lexical-density
// metrics then report unavailable and lemmatization falls back to the
// in-process lexicon.
type TaggerConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int64  `yaml:"timeout_ms"`
}

// OutputConfig selects where reports go.
type OutputConfig struct {
	// Dir is the report output directory. Empty means stdout.
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when a field is absent from the
// loaded file.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: LogInfo},
		Session: SessionConfig{TutorLabel: "A", StudentLabel: "B"},
		Analysis: AnalysisConfig{
			HesitationThresholdMS: detect.DefaultHesitationThresholdMS,
			LongPauseThresholdMS:  detect.DefaultLongPauseThresholdMS,
			FormulaicMinCount:     detect.DefaultFormulaicMinCount,
			MinWordConfidence:     detect.DefaultMinWordConfidence,
		},
		Lexicon: LexiconConfig{FuzzyThreshold: lexicon.DefaultFuzzyThreshold},
		Tagger:  TaggerConfig{TimeoutMS: 5000},
		Workers: 4,
	}
}
