package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/decktranslate/internal"
	"codeberg.org/snonux/decktranslate/internal/archive"
	"codeberg.org/snonux/decktranslate/internal/batch"
	"codeberg.org/snonux/decktranslate/internal/checkpoint"
	"codeberg.org/snonux/decktranslate/internal/dataset"
	"codeberg.org/snonux/decktranslate/internal/languages"
	"codeberg.org/snonux/decktranslate/internal/metrics"
	"codeberg.org/snonux/decktranslate/internal/retry"
	"codeberg.org/snonux/decktranslate/internal/translation"
)

// DefaultCallDelay separates the meaning and example calls of a chunk.
const DefaultCallDelay = 500 * time.Millisecond

// Config holds the settings of one pipeline run.
type Config struct {
	InputFile  string
	OutputFile string

	SourceLang    string
	MeaningColumn string
	ExampleColumn string
	Targets       []languages.Target

	ChunkSize int
	CallDelay time.Duration

	// Move an unreadable checkpoint aside and start over instead of failing
	DiscardCheckpoint bool

	// Forget cells recorded as failures so they are requested again
	RetryFailed bool
}

// DefaultConfig returns a configuration with the default columns, targets
// and chunk size. Input and output are left empty.
func DefaultConfig() Config {
	targets := make([]languages.Target, 0, len(languages.DefaultTargets))
	for _, code := range languages.DefaultTargets {
		targets = append(targets, languages.NewTarget(code))
	}
	return Config{
		SourceLang:    "en",
		MeaningColumn: "english",
		ExampleColumn: "example",
		Targets:       targets,
		ChunkSize:     batch.DefaultChunkSize,
		CallDelay:     DefaultCallDelay,
	}
}

// Option customises a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithRetry replaces the retry controller.
func WithRetry(c *retry.Controller) Option {
	return func(p *Processor) {
		p.retry = c
	}
}

// WithSleep replaces the sleep function used for every wait, including
// the retry controller's.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(p *Processor) {
		p.sleep = sleep
	}
}

// Processor runs the translation pipeline
type Processor struct {
	config     Config
	translator translation.Translator
	store      *checkpoint.Store
	retry      *retry.Controller
	sleep      retry.SleepFunc
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

// NewProcessor creates a new pipeline processor
func NewProcessor(config Config, translator translation.Translator, store *checkpoint.Store, opts ...Option) *Processor {
	p := &Processor{
		config:     config,
		translator: translator,
		store:      store,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logrus.New()
	}
	if p.retry == nil {
		p.retry = retry.NewController(p.logger, p.metrics)
	}
	if p.retry.Logger == nil {
		p.retry.Logger = p.logger
	}
	if p.retry.Metrics == nil {
		p.retry.Metrics = p.metrics
	}
	if p.sleep != nil {
		p.retry.Sleep = p.sleep
	} else {
		p.sleep = retry.Sleep
	}
	if p.config.OutputFile == "" {
		p.config.OutputFile = p.config.InputFile
	}
	return p
}

// Run translates every target language and writes the output dataset.
// The checkpoint is saved after every chunk and removed once the output is
// written. On error the checkpoint stays on disk and the output is not
// touched.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()

	if err := p.validate(); err != nil {
		return nil, err
	}

	ds, err := dataset.Load(p.config.InputFile)
	if err != nil {
		return nil, internal.NewConfigError("input", err)
	}
	meanings, examples, err := p.sourceColumns(ds)
	if err != nil {
		return nil, err
	}
	for _, target := range p.config.Targets {
		for _, column := range target.Columns() {
			ds.EnsureColumn(column)
		}
	}

	cp, err := p.loadCheckpoint()
	if err != nil {
		return nil, err
	}

	chunks, err := batch.Plan(ds.Len(), p.config.ChunkSize)
	if err != nil {
		return nil, internal.NewConfigError("chunk-size", err)
	}

	p.logger.WithFields(logrus.Fields{
		"input":     p.config.InputFile,
		"rows":      ds.Len(),
		"chunks":    len(chunks),
		"languages": len(p.config.Targets),
		"provider":  p.translator.Name(),
	}).Info("Starting translation")

	report := &Report{Rows: ds.Len()}
	for _, target := range p.config.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run := &languageRun{
			target:   target,
			progress: cp.Language(target.Code),
			dataset:  ds,
			meanings: meanings,
			examples: examples,
		}
		if err := p.translateLanguage(ctx, cp, run, chunks, report); err != nil {
			return nil, fmt.Errorf("%s: %w", target.Code, err)
		}
	}

	for _, target := range p.config.Targets {
		report.FailedCells += cp.Language(target.Code).FailedCount()
	}

	if err := ds.Save(p.config.OutputFile); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	if err := p.store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to remove checkpoint: %w", err)
	}

	var columns []string
	for _, target := range p.config.Targets {
		columns = append(columns, target.Columns()...)
	}
	report.FilledRows = ds.CountFilled(columns)
	report.Duration = time.Since(startTime)

	p.logger.WithFields(logrus.Fields{
		"output":       p.config.OutputFile,
		"filled_rows":  report.FilledRows,
		"rows":         report.Rows,
		"failed_cells": report.FailedCells,
		"duration":     report.Duration.Round(time.Millisecond).String(),
	}).Info("Translation finished")

	return report, nil
}

// validate reports configuration problems before any provider call.
func (p *Processor) validate() error {
	if p.config.InputFile == "" {
		return internal.NewConfigError("input", errors.New("no input file given"))
	}
	if len(p.config.Targets) == 0 {
		return internal.NewConfigError("targets", errors.New("no target languages"))
	}
	if p.config.ChunkSize <= 0 {
		return internal.NewConfigError("chunk-size", fmt.Errorf("must be positive, got %d", p.config.ChunkSize))
	}
	if p.translator == nil {
		return internal.NewConfigError("provider", errors.New("no translator configured"))
	}
	if err := p.translator.IsAvailable(); err != nil {
		return internal.NewConfigError("provider", err)
	}
	if err := checkWritableDir(filepath.Dir(p.config.OutputFile)); err != nil {
		return internal.NewConfigError("output", err)
	}
	return nil
}

// checkWritableDir verifies that files can be created in dir.
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".decktranslate-probe-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (p *Processor) sourceColumns(ds *dataset.Dataset) (meanings, examples []string, err error) {
	meanings, err = ds.Column(p.config.MeaningColumn)
	if err != nil {
		return nil, nil, internal.NewConfigError("meaning-column", err)
	}
	examples, err = ds.Column(p.config.ExampleColumn)
	if err != nil {
		return nil, nil, internal.NewConfigError("example-column", err)
	}
	return meanings, examples, nil
}

// loadCheckpoint loads the checkpoint, archiving a corrupt one when
// DiscardCheckpoint is set and dropping failed cells when RetryFailed is.
func (p *Processor) loadCheckpoint() (checkpoint.Checkpoint, error) {
	cp, err := p.store.Load()
	if errors.Is(err, checkpoint.ErrCorrupt) && p.config.DiscardCheckpoint {
		archived, archiveErr := archive.ArchiveFile(p.store.Path())
		if archiveErr != nil {
			return nil, fmt.Errorf("failed to move corrupt checkpoint aside: %w", archiveErr)
		}
		p.logger.WithFields(logrus.Fields{
			"checkpoint": p.store.Path(),
			"archived":   archived,
		}).WithError(err).Warn("Discarded corrupt checkpoint, starting over")
		return checkpoint.New(), nil
	}
	if err != nil {
		return nil, err
	}

	if len(cp) > 0 {
		p.logger.WithFields(logrus.Fields{
			"checkpoint": p.store.Path(),
			"languages":  len(cp),
		}).Info("Resuming from checkpoint")
	}

	if p.config.RetryFailed {
		dropped := 0
		for _, code := range cp.Codes() {
			n := cp[code].DropFailed()
			if n > 0 {
				p.logger.WithFields(logrus.Fields{
					"language": code,
					"rows":     n,
				}).Info("Dropped failed rows for retry")
			}
			dropped += n
		}
		if dropped > 0 {
			if err := p.store.Save(cp); err != nil {
				return nil, err
			}
		}
	}
	return cp, nil
}
