package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
logging:
  level: debug
session:
  tutor_label: T
  student_label: S
analysis:
  hesitation_threshold_ms: 600
  long_pause_threshold_ms: 1200
  min_word_confidence: 0.9
lexicon:
  teaching_list: testdata/ngsl.csv
  general_list: testdata/coca.txt
tagger:
  base_url: http://localhost:9021
output:
  dir: reports
workers: 2
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Logging.Level != LogDebug {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Session.TutorLabel != "T" || cfg.Session.StudentLabel != "S" {
		t.Errorf("labels = %q/%q", cfg.Session.TutorLabel, cfg.Session.StudentLabel)
	}
	if cfg.Analysis.HesitationThresholdMS != 600 {
		t.Errorf("hesitation threshold = %d", cfg.Analysis.HesitationThresholdMS)
	}
	// Unset fields keep their defaults.
	if cfg.Analysis.FormulaicMinCount != 3 {
		t.Errorf("formulaic min count = %d, want default 3", cfg.Analysis.FormulaicMinCount)
	}
	if cfg.Tagger.TimeoutMS != 5000 {
		t.Errorf("tagger timeout = %d, want default 5000", cfg.Tagger.TimeoutMS)
	}
}

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Session.TutorLabel != "A" || cfg.Session.StudentLabel != "B" {
		t.Errorf("default labels = %q/%q", cfg.Session.TutorLabel, cfg.Session.StudentLabel)
	}
	if cfg.Workers != 4 {
		t.Errorf("default workers = %d", cfg.Workers)
	}
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("loging:\n  level: info\n")); err == nil {
		t.Fatal("want error for misspelled top-level key")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"bad log level":      func(c *Config) { c.Logging.Level = "verbose" },
		"identical labels":   func(c *Config) { c.Session.StudentLabel = c.Session.TutorLabel },
		"empty tutor label":  func(c *Config) { c.Session.TutorLabel = "" },
		"negative threshold": func(c *Config) { c.Analysis.LongPauseThresholdMS = -1 },
		"confidence over 1":  func(c *Config) { c.Analysis.MinWordConfidence = 1.5 },
		"fuzzy out of range": func(c *Config) { c.Lexicon.FuzzyThreshold = 2 },
		"negative timeout":   func(c *Config) { c.Tagger.TimeoutMS = -100 },
		"zero workers":       func(c *Config) { c.Workers = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("want validation error")
			}
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		if err := Validate(Default()); err != nil {
			t.Fatalf("Validate(Default()): %v", err)
		}
	})

	t.Run("all failures joined", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		cfg.Workers = 0
		err := Validate(cfg)
		if err == nil {
			t.Fatal("want validation error")
		}
		msg := err.Error()
		if !strings.Contains(msg, "logging.level") || !strings.Contains(msg, "workers") {
			t.Errorf("joined error missing a failure: %v", msg)
		}
	})
}
