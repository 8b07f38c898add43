// Package app wires the analysis pipeline together and runs session batches.
//
// One session is a sequential, run-to-completion pipeline with no suspension
// points: validate, align, compute per-speaker metrics, compare, and write a
// report. Sessions never write partial reports; a session either produces a
// complete report or none. Many sessions run concurrently; the only shared
// state is the read-only lexicon table and the report sink.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fluentlab/fluentlab/internal/align"
	"github.com/fluentlab/fluentlab/internal/compare"
	"github.com/fluentlab/fluentlab/internal/config"
	"github.com/fluentlab/fluentlab/internal/ingest"
	"github.com/fluentlab/fluentlab/internal/lexicon"
	"github.com/fluentlab/fluentlab/internal/metrics"
	"github.com/fluentlab/fluentlab/internal/observe"
	"github.com/fluentlab/fluentlab/internal/report"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger/lexlemma"
	"github.com/fluentlab/fluentlab/pkg/provider/tagger/taggerhttp"
	"github.com/fluentlab/fluentlab/pkg/types"
)

// App holds the assembled pipeline dependencies for a batch run.
type App struct {
	cfg    *config.Config
	engine *metrics.Engine
	sink   report.Sink
	obs    *observe.Metrics
	logger *slog.Logger
}

// Option is a functional option for configuring an [App].
type Option func(*App)

// WithSink overrides the report sink chosen from the config.
func WithSink(s report.Sink) Option {
	return func(a *App) { a.sink = s }
}

// WithObserveMetrics overrides the default metric instruments. Tests use
// this with a ManualReader-backed instance.
func WithObserveMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.obs = m }
}

// WithLogger sets the application logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New assembles an App from the config: the reference lexicon, the tagging
// capability, the metrics engine, and the report sink.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	table, err := lexicon.LoadFiles(cfg.Lexicon.TeachingList, cfg.Lexicon.GeneralList,
		lexicon.WithFuzzyThreshold(cfg.Lexicon.FuzzyThreshold))
	if err != nil {
		return nil, fmt.Errorf("app: loading lexicon: %w", err)
	}

	engineOpts := []metrics.Option{
		metrics.WithHesitationThreshold(cfg.Analysis.HesitationThresholdMS),
		metrics.WithLongPauseThreshold(cfg.Analysis.LongPauseThresholdMS),
		metrics.WithFormulaicMinCount(cfg.Analysis.FormulaicMinCount),
		metrics.WithMinWordConfidence(cfg.Analysis.MinWordConfidence),
		metrics.WithLogger(a.logger),
	}
	if len(cfg.Analysis.FillerWords) > 0 {
		engineOpts = append(engineOpts, metrics.WithFillerLexicon(cfg.Analysis.FillerWords))
	}
	if table.Len() > 0 {
		engineOpts = append(engineOpts, metrics.WithLexicon(table))
	}

	// A remote tagger serves both capabilities. Without one, lemmatization
	// falls back to the in-process lexicon and POS metrics go unavailable.
	var lemm tagger.Lemmatizer
	if cfg.Tagger.BaseURL != "" {
		client := taggerhttp.New(cfg.Tagger.BaseURL,
			taggerhttp.WithTimeout(time.Duration(cfg.Tagger.TimeoutMS)*time.Millisecond))
		engineOpts = append(engineOpts, metrics.WithTagger(client))
		lemm = client
	} else if table.Len() > 0 {
		lemm = lexlemma.New(table)
	}
	if lemm != nil {
		engineOpts = append(engineOpts, metrics.WithLemmatizer(lemm))
	}
	a.engine = metrics.New(engineOpts...)

	if a.sink == nil {
		if cfg.Output.Dir != "" {
			sink, err := report.NewDirSink(cfg.Output.Dir)
			if err != nil {
				return nil, fmt.Errorf("app: %w", err)
			}
			a.sink = sink
		} else {
			a.sink = report.NewWriterSink(os.Stdout)
		}
	}
	if a.obs == nil {
		a.obs = observe.DefaultMetrics()
	}
	return a, nil
}

// ProcessSession runs the full pipeline for one session and writes its
// report to the sink. It fails only on structurally invalid input or a sink
// write failure; everything downstream of validation degrades into report
// diagnostics instead.
func (a *App) ProcessSession(ctx context.Context, in *types.SessionInput) (*report.Report, error) {
	if err := ingest.Validate(in); err != nil {
		return nil, err
	}

	a.obs.ActiveSessions.Add(ctx, 1)
	defer a.obs.ActiveSessions.Add(ctx, -1)

	// Alignment.
	ctx, alignSpan := observe.StartSpan(ctx, "align")
	logger := observe.Logger(ctx).With("session", in.SessionID)
	start := time.Now()
	res := align.Align(in.Words, in.Segments)
	a.obs.AlignDuration.Record(ctx, time.Since(start).Seconds())
	alignSpan.End()

	if res.Anomalies > 0 {
		a.obs.AlignmentAnomalies.Add(ctx, int64(res.Anomalies))
		logger.Warn("alignment anomalies", "count", res.Anomalies)
	}
	if res.MalformedSegments > 0 {
		a.obs.MalformedSegments.Add(ctx, int64(res.MalformedSegments))
		logger.Warn("malformed diarization segments", "count", res.MalformedSegments)
	}

	// Per-speaker metrics.
	ctx, metricsSpan := observe.StartSpan(ctx, "metrics")
	start = time.Now()
	tutorSM := a.engine.Speaker(ctx, res.Transcript, in.TutorLabel, in.Sentences)
	studentSM := a.engine.Speaker(ctx, res.Transcript, in.StudentLabel, in.Sentences)
	a.obs.MetricsDuration.Record(ctx, time.Since(start).Seconds())
	metricsSpan.End()

	for _, sm := range []*metrics.SessionMetrics{tutorSM, studentSM} {
		for _, d := range sm.Diagnostics {
			a.obs.RecordUnavailable(ctx, d.Metric)
		}
	}

	// Report assembly.
	ctx, reportSpan := observe.StartSpan(ctx, "report")
	start = time.Now()
	rep := report.New(in.SessionID, map[string]*metrics.SessionMetrics{
		in.TutorLabel:   tutorSM,
		in.StudentLabel: studentSM,
	})
	rep.Alignment = report.AlignmentSummary{
		Anomalies:         res.Anomalies,
		MalformedSegments: res.MalformedSegments,
	}

	cmp, err := compare.Compare(res.Transcript, studentSM, tutorSM)
	if err != nil {
		rep.Diagnose("comparative", err.Error())
		a.obs.RecordUnavailable(ctx, "comparative")
	} else {
		rep.Comparative = cmp
	}

	err = a.sink.Write(ctx, rep)
	a.obs.ReportDuration.Record(ctx, time.Since(start).Seconds())
	reportSpan.End()
	if err != nil {
		return nil, fmt.Errorf("app: session %s: %w", in.SessionID, err)
	}

	logger.Info("session processed",
		"report_id", rep.ReportID,
		"anomalies", res.Anomalies,
		"diagnostics", len(rep.Diagnostics)+len(tutorSM.Diagnostics)+len(studentSM.Diagnostics),
	)
	return rep, nil
}

// Run processes a batch of session directories concurrently with the
// configured worker count. A session that fails validation or cannot be
// written is logged and counted; it never stops the rest of the batch. Run
// returns an error only when the context is cancelled, or when every
// session failed.
func (a *App) Run(ctx context.Context, dirs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)

	failures := make([]error, len(dirs))
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			failures[i] = a.runOne(ctx, dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == len(dirs) && failed > 0 {
		return fmt.Errorf("app: all %d sessions failed: %w", failed, errors.Join(failures...))
	}
	if failed > 0 {
		a.logger.Warn("batch finished with failures", "failed", failed, "total", len(dirs))
	}
	return nil
}

func (a *App) runOne(ctx context.Context, dir string) error {
	ctx, span := observe.StartSpan(ctx, "ingest")
	start := time.Now()
	in, err := ingest.LoadDir(dir, a.cfg.Session.TutorLabel, a.cfg.Session.StudentLabel)
	a.obs.IngestDuration.Record(ctx, time.Since(start).Seconds())
	span.End()
	if err != nil {
		a.obs.RecordSession(ctx, "invalid")
		a.logger.Error("session rejected", "dir", dir, "err", err)
		return err
	}

	if _, err := a.ProcessSession(ctx, in); err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			a.obs.RecordSession(ctx, "invalid")
		} else {
			a.obs.RecordSession(ctx, "error")
		}
		a.logger.Error("session failed", "dir", dir, "err", err)
		return err
	}
	a.obs.RecordSession(ctx, "ok")
	return nil
}
