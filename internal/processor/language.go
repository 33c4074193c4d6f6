package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/decktranslate/internal/batch"
	"codeberg.org/snonux/decktranslate/internal/checkpoint"
	"codeberg.org/snonux/decktranslate/internal/dataset"
	"codeberg.org/snonux/decktranslate/internal/languages"
	"codeberg.org/snonux/decktranslate/internal/metrics"
	"codeberg.org/snonux/decktranslate/internal/retry"
)

// languageRun is the state of one target language during a run.
type languageRun struct {
	target   languages.Target
	progress *checkpoint.Progress
	dataset  *dataset.Dataset
	meanings []string
	examples []string
}

// copyRecorded writes the recorded translations of rows into the dataset.
func (r *languageRun) copyRecorded(rows []int) error {
	for _, row := range rows {
		if !r.progress.Has(row) {
			continue
		}
		meaning, example := r.progress.Get(row)
		if err := r.dataset.Set(row, r.target.MeaningColumn, meaning); err != nil {
			return err
		}
		if err := r.dataset.Set(row, r.target.ExampleColumn, example); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) translateLanguage(ctx context.Context, cp checkpoint.Checkpoint, run *languageRun, chunks []batch.Chunk, report *Report) error {
	logger := p.logger.WithFields(logrus.Fields{
		"language": run.target.Code,
		"name":     run.target.Name(),
	})

	if run.progress.Complete {
		// Trusted: no chunk is checked or requested
		all := batch.Chunk{Start: 0, End: run.dataset.Len()}
		if err := run.copyRecorded(all.Rows()); err != nil {
			return err
		}
		logger.Info("Language already complete, using checkpoint")
		p.metrics.RecordLanguage(metrics.ChunkCached)
		report.Languages = append(report.Languages, LanguageReport{
			Code:   run.target.Code,
			Cached: true,
		})
		return nil
	}

	logger.WithField("state", run.progress.State()).Info("Translating language")
	langReport := LanguageReport{Code: run.target.Code}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if batch.IsSatisfied(chunk, run.progress) {
			if err := run.copyRecorded(chunk.Rows()); err != nil {
				return err
			}
			langReport.ChunksCached++
			p.metrics.RecordChunk(run.target.Code, metrics.ChunkCached)
			continue
		}

		if err := p.translateChunk(ctx, run, chunk); err != nil {
			return fmt.Errorf("%s: %w", chunk, err)
		}
		if err := p.store.Save(cp); err != nil {
			return err
		}
		langReport.ChunksTranslated++
		p.metrics.RecordChunk(run.target.Code, metrics.ChunkTranslated)

		logger.WithFields(logrus.Fields{
			"chunk":    chunk.Index + 1,
			"chunks":   len(chunks),
			"recorded": len(run.progress.Meanings),
		}).Info("Chunk saved")
	}

	run.progress.Complete = true
	if err := p.store.Save(cp); err != nil {
		return err
	}
	p.metrics.RecordLanguage(metrics.ChunkTranslated)

	langReport.FailedCells = run.progress.FailedCount()
	report.Languages = append(report.Languages, langReport)
	logger.WithFields(logrus.Fields{
		"translated_chunks": langReport.ChunksTranslated,
		"cached_chunks":     langReport.ChunksCached,
		"failed_cells":      langReport.FailedCells,
	}).Info("Language complete")
	return nil
}

// translateChunk requests the rows of chunk that are not yet recorded, one
// call for meanings and one for examples, and records the results.
func (p *Processor) translateChunk(ctx context.Context, run *languageRun, chunk batch.Chunk) error {
	var rows []int
	for _, row := range chunk.Rows() {
		if !run.progress.Has(row) {
			rows = append(rows, row)
		}
	}
	if err := run.copyRecorded(chunk.Rows()); err != nil {
		return err
	}

	meaningTexts := make([]string, len(rows))
	exampleTexts := make([]string, len(rows))
	for i, row := range rows {
		meaningTexts[i] = run.meanings[row]
		exampleTexts[i] = run.examples[row]
	}

	meanings, err := p.retry.Execute(ctx, meaningTexts, p.batchFunc(run), p.itemFunc(run))
	if err != nil {
		return err
	}
	if err := p.wait(ctx, p.config.CallDelay); err != nil {
		return err
	}
	examples, err := p.retry.Execute(ctx, exampleTexts, p.batchFunc(run), p.itemFunc(run))
	if err != nil {
		return err
	}

	for i, row := range rows {
		run.progress.Record(row, meanings.Values[i], examples.Values[i])
		if err := run.dataset.Set(row, run.target.MeaningColumn, meanings.Values[i]); err != nil {
			return err
		}
		if err := run.dataset.Set(row, run.target.ExampleColumn, examples.Values[i]); err != nil {
			return err
		}
	}
	for _, i := range meanings.Failed {
		run.progress.MarkFailed(checkpoint.FieldMeaning, rows[i])
	}
	for _, i := range examples.Failed {
		run.progress.MarkFailed(checkpoint.FieldExample, rows[i])
	}
	return nil
}

func (p *Processor) batchFunc(run *languageRun) retry.BatchFunc {
	return func(ctx context.Context, texts []string) ([]string, error) {
		return p.translator.TranslateBatch(ctx, texts, p.config.SourceLang, run.target.Code)
	}
}

func (p *Processor) itemFunc(run *languageRun) retry.ItemFunc {
	return func(ctx context.Context, text string) (string, error) {
		values, err := p.translator.TranslateBatch(ctx, []string{text}, p.config.SourceLang, run.target.Code)
		if err != nil {
			return "", err
		}
		if len(values) != 1 {
			return "", fmt.Errorf("got %d results for 1 text", len(values))
		}
		return values[0], nil
	}
}

func (p *Processor) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if err := p.sleep(ctx, d); err != nil {
		return err
	}
	p.metrics.RecordWait(d.Seconds())
	return nil
}
