package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Logging.Level != "" && !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}

	if cfg.Session.TutorLabel == "" {
		errs = append(errs, errors.New("session.tutor_label is required"))
	}
	if cfg.Session.StudentLabel == "" {
		errs = append(errs, errors.New("session.student_label is required"))
	}
	if cfg.Session.TutorLabel != "" && cfg.Session.TutorLabel == cfg.Session.StudentLabel {
		errs = append(errs, fmt.Errorf("session labels must differ; both are %q", cfg.Session.TutorLabel))
	}

	if cfg.Analysis.HesitationThresholdMS < 0 {
		errs = append(errs, fmt.Errorf("analysis.hesitation_threshold_ms %d is negative", cfg.Analysis.HesitationThresholdMS))
	}
	if cfg.Analysis.LongPauseThresholdMS < 0 {
		errs = append(errs, fmt.Errorf("analysis.long_pause_threshold_ms %d is negative", cfg.Analysis.LongPauseThresholdMS))
	}
	if cfg.Analysis.FormulaicMinCount < 0 {
		errs = append(errs, fmt.Errorf("analysis.formulaic_min_count %d is negative", cfg.Analysis.FormulaicMinCount))
	}
	if c := cfg.Analysis.MinWordConfidence; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("analysis.min_word_confidence %.2f is out of range [0, 1]", c))
	}

	if f := cfg.Lexicon.FuzzyThreshold; f < 0 || f > 1 {
		errs = append(errs, fmt.Errorf("lexicon.fuzzy_threshold %.2f is out of range [0, 1]", f))
	}
	if (cfg.Lexicon.TeachingList == "") != (cfg.Lexicon.GeneralList == "") {
		slog.Warn("only one lexicon list configured; whitelist coverage will be partial",
			"teaching_list", cfg.Lexicon.TeachingList,
			"general_list", cfg.Lexicon.GeneralList,
		)
	}

	if cfg.Tagger.TimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("tagger.timeout_ms %d is negative", cfg.Tagger.TimeoutMS))
	}
	if cfg.Tagger.BaseURL == "" {
		slog.Warn("tagger.base_url is empty; lexical-density metrics will be unavailable")
	}

	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", cfg.Workers))
	}

	return errors.Join(errs...)
}
