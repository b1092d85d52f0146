// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/reelscore/internal/features"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
	"github.com/tomtom215/reelscore/internal/ml"
	"github.com/tomtom215/reelscore/internal/report"
	"github.com/tomtom215/reelscore/internal/table"
)

// headRows is how many rows of the cleaned dataset are logged at debug level.
const headRows = 5

func (r *Runner) train(ctx context.Context) error {
	log := logging.Ctx(ctx)
	paths := r.cfg.Paths

	flat, err := table.ReadFile(paths.Resolve(paths.FlatCSV))
	if err != nil {
		return err
	}

	enc, err := r.encode(ctx, flat)
	if err != nil {
		return err
	}

	// The exported dataset and plot use statistics from every row.
	full := features.NewPreprocessor(enc.Columns, r.cfg.Features.VarianceThreshold)
	if err := full.Fit(enc.X, enc.Y); err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	imputedX, imputedY, err := full.Impute(enc.X, enc.Y)
	if err != nil {
		return err
	}
	metrics.ColumnsDropped.Add(float64(len(full.Dropped())))
	log.Info().
		Strs("features", full.Columns()).
		Strs("dropped", full.Dropped()).
		Msg("Selected features")

	data, prep, err := r.dataset(enc, full)
	if err != nil {
		return err
	}

	specs, err := ml.Specs(r.cfg.Models)
	if err != nil {
		return err
	}
	evaluator := ml.NewEvaluator(r.cfg.Split, r.cfg.Models.CVFolds, prep)
	results, err := evaluator.Evaluate(ctx, specs, data)
	if err != nil {
		return err
	}
	for i := range results {
		// Pre-transformed rows carry the full-dataset selection.
		if results[i].Columns == nil {
			results[i].Columns = full.Columns()
		}
	}

	if err := report.WriteSummary(r.out, results); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	years := make([]float64, len(imputedX))
	for i, row := range imputedX {
		years[i] = row[0]
	}
	if err := report.ScatterPlot(paths.Resolve(paths.Plot), years, imputedY); err != nil {
		return err
	}

	finalPath := paths.Resolve(paths.FinalCSV)
	if err := report.WriteDataset(finalPath, enc.Columns, imputedX, imputedY); err != nil {
		return err
	}
	logHead(ctx, enc.Columns, imputedX, imputedY)

	ev := &report.Evaluation{
		RunID:       logging.RunIDFromContext(ctx),
		GeneratedAt: time.Now().UTC(),
		FitScope:    r.cfg.Features.FitScope,
		Rows:        enc.Len(),
		Features:    full.Columns(),
		Dropped:     full.Dropped(),
		Results:     results,
	}
	if err := report.WriteEvaluation(paths.Resolve(paths.Evaluation), ev); err != nil {
		return err
	}

	log.Info().
		Int("movies", enc.Len()).
		Int("models", len(results)).
		Str("dataset", finalPath).
		Msg("Training complete")
	return nil
}

// encode builds the feature table, either learning and saving a new
// vocabulary or reusing the persisted one.
func (r *Runner) encode(ctx context.Context, flat *table.Table) (*features.Encoded, error) {
	log := logging.Ctx(ctx)
	builder := features.NewBuilder(r.cfg.Features)
	vocabPath := r.cfg.Paths.Resolve(r.cfg.Paths.Vocabulary)

	if r.cfg.Features.ReuseVocabulary {
		vocab, err := features.LoadVocabulary(vocabPath)
		switch {
		case err == nil:
			log.Info().Str("path", vocabPath).Str("vocabulary_run_id", vocab.RunID).Msg("Encoding with saved vocabulary")
			return builder.Transform(ctx, flat, vocab)
		case errors.Is(err, fs.ErrNotExist):
			log.Warn().Str("path", vocabPath).Msg("No saved vocabulary, learning a new one")
		default:
			return nil, err
		}
	}

	enc, err := builder.Fit(ctx, flat)
	if err != nil {
		return nil, err
	}
	if err := enc.Vocabulary.Save(vocabPath); err != nil {
		return nil, fmt.Errorf("save vocabulary: %w", err)
	}
	log.Info().Str("path", vocabPath).Int("columns", len(enc.Columns)).Msg("Saved vocabulary")
	return enc, nil
}

// dataset returns the rows handed to the evaluator and the preprocessor
// factory used for every fit. With fit scope "full" the rows are already
// preprocessed with statistics from the whole table.
func (r *Runner) dataset(enc *features.Encoded, full *features.Preprocessor) (ml.Dataset, ml.PreprocessorFactory, error) {
	threshold := r.cfg.Features.VarianceThreshold

	if r.cfg.Features.FitScope != "full" {
		return ml.Dataset{X: enc.X, Y: enc.Y}, func() ml.Preprocessor {
			return features.NewPreprocessor(enc.Columns, threshold)
		}, nil
	}

	X, y, err := full.Transform(enc.X, enc.Y)
	if err != nil {
		return ml.Dataset{}, nil, err
	}
	rows, _ := X.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return ml.Dataset{X: out, Y: y}, func() ml.Preprocessor { return ml.Passthrough{} }, nil
}

func logHead(ctx context.Context, columns []string, X [][]float64, y []float64) {
	log := logging.Ctx(ctx)
	for i := 0; i < len(X) && i < headRows; i++ {
		ev := log.Debug().Int("row", i).Float64(report.TargetColumn, y[i])
		for j, c := range columns {
			ev = ev.Float64(c, X[i][j])
		}
		ev.Msg("Cleaned dataset row")
	}
}
