// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
)

// Preprocessor turns raw feature rows into a model-ready matrix. Fit sees
// only training rows; Transform is then applied to both sides of a split.
type Preprocessor interface {
	Fit(X [][]float64, y []float64) error
	Transform(X [][]float64, y []float64) (*mat.Dense, []float64, error)
}

// columnReporter is implemented by preprocessors that select columns.
type columnReporter interface {
	Columns() []string
}

// linearFit is implemented by models with a coefficient per feature.
type linearFit interface {
	Coefficients() ([]float64, float64)
}

// PreprocessorFactory returns a fresh, unfitted Preprocessor.
type PreprocessorFactory func() Preprocessor

// ModelSpec names a model and builds fresh instances of it.
type ModelSpec struct {
	Name string
	New  func() Regressor
}

// Dataset is an encoded feature table with one target per row.
type Dataset struct {
	X [][]float64
	Y []float64
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Y)
}

func (d Dataset) subset(idx []int) ([][]float64, []float64) {
	X := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for k, i := range idx {
		X[k] = d.X[i]
		y[k] = d.Y[i]
	}
	return X, y
}

// Result is the evaluation of one model.
type Result struct {
	Model     string        `json:"model"`
	MSE       float64       `json:"mse"`
	R2        float64       `json:"r2"`
	CVR2      float64       `json:"cv_r2"`
	FoldR2    []float64     `json:"fold_r2"`
	TrainRows int           `json:"train_rows"`
	TestRows  int           `json:"test_rows"`
	Features  int           `json:"features"`
	// Columns are the feature names the holdout model was fitted on, when
	// the preprocessor selects columns.
	Columns []string `json:"columns,omitempty"`
	// Coefficients and Intercept are set for linear models, in Columns order.
	Coefficients []float64     `json:"coefficients,omitempty"`
	Intercept    float64       `json:"intercept,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// Specs builds model specs for the enabled model keys.
func Specs(cfg config.ModelsConfig) ([]ModelSpec, error) {
	specs := make([]ModelSpec, 0, len(cfg.Enabled))
	for _, key := range cfg.Enabled {
		switch key {
		case "linear":
			specs = append(specs, ModelSpec{Name: "LinearRegression", New: func() Regressor {
				return NewLinearRegression()
			}})
		case "ridge":
			alpha := cfg.RidgeAlpha
			specs = append(specs, ModelSpec{Name: "Ridge", New: func() Regressor {
				return NewRidge(alpha)
			}})
		case "forest":
			fc := ForestConfig{
				Trees:          cfg.Trees,
				MaxDepth:       cfg.MaxDepth,
				MinSamplesLeaf: cfg.MinSamplesLeaf,
				Seed:           cfg.ForestSeed,
			}
			specs = append(specs, ModelSpec{Name: "RandomForest", New: func() Regressor {
				return NewRandomForest(fc)
			}})
		default:
			return nil, fmt.Errorf("unknown model %q", key)
		}
	}
	return specs, nil
}

// Evaluator fits models on a train/test split and scores them with k-fold
// cross-validation over the whole dataset.
type Evaluator struct {
	prep      PreprocessorFactory
	testRatio float64
	seed      int64
	folds     int
}

// NewEvaluator creates an evaluator. prep is called once per fit so no
// preprocessing state leaks between models or folds.
func NewEvaluator(split config.SplitConfig, folds int, prep PreprocessorFactory) *Evaluator {
	return &Evaluator{prep: prep, testRatio: split.TestRatio, seed: split.Seed, folds: folds}
}

// Evaluate scores every spec on data. All specs see the same split and folds.
func (e *Evaluator) Evaluate(ctx context.Context, specs []ModelSpec, data Dataset) ([]Result, error) {
	split, err := TrainTestSplit(data.Len(), e.testRatio, e.seed)
	if err != nil {
		return nil, err
	}
	folds, err := KFold(data.Len(), e.folds)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("train_rows", len(split.Train)).
		Int("test_rows", len(split.Test)).
		Int("folds", len(folds)).
		Msg("Split dataset")

	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		res, err := e.EvaluateModel(ctx, spec, data, split, folds)
		if err != nil {
			return results, fmt.Errorf("evaluate %s: %w", spec.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// EvaluateModel fits spec on the training rows, scores it on the test rows
// and computes the mean R2 over folds.
func (e *Evaluator) EvaluateModel(ctx context.Context, spec ModelSpec, data Dataset, split Split, folds []Fold) (Result, error) {
	start := time.Now()
	res := Result{Model: spec.Name, TrainRows: len(split.Train), TestRows: len(split.Test)}

	holdout, err := e.fitScore(ctx, spec, data, split.Train, split.Test)
	if err != nil {
		return res, err
	}
	res.MSE, res.R2, res.Features, res.Columns = holdout.mse, holdout.r2, holdout.features, holdout.columns
	res.Coefficients, res.Intercept = holdout.coef, holdout.intercept

	res.FoldR2 = make([]float64, len(folds))
	for i, fold := range folds {
		sc, err := e.fitScore(ctx, spec, data, fold.Train, fold.Test)
		if err != nil {
			return res, fmt.Errorf("fold %d: %w", i+1, err)
		}
		res.FoldR2[i] = sc.r2
	}
	res.CVR2 = stat.Mean(res.FoldR2, nil)
	res.Duration = time.Since(start)

	metrics.RecordModelResult(res.Model, res.MSE, res.R2, res.CVR2, res.Duration)
	logging.Ctx(ctx).Info().
		Str("model", res.Model).
		Float64("mse", res.MSE).
		Float64("r2", res.R2).
		Float64("cv_r2", res.CVR2).
		Int("features", res.Features).
		Dur("duration", res.Duration).
		Msg("Evaluated model")
	return res, nil
}

// score is the outcome of one fit on train rows scored on test rows.
type score struct {
	mse, r2   float64
	features  int
	columns   []string
	coef      []float64
	intercept float64
}

// fitScore preprocesses, fits a fresh model on train and scores it on test.
func (e *Evaluator) fitScore(ctx context.Context, spec ModelSpec, data Dataset, train, test []int) (score, error) {
	trainX, trainY := data.subset(train)
	testX, testY := data.subset(test)

	prep := e.prep()
	if err := prep.Fit(trainX, trainY); err != nil {
		return score{}, fmt.Errorf("fit preprocessor: %w", err)
	}
	xtr, ytr, err := prep.Transform(trainX, trainY)
	if err != nil {
		return score{}, fmt.Errorf("transform train rows: %w", err)
	}
	xte, yte, err := prep.Transform(testX, testY)
	if err != nil {
		return score{}, fmt.Errorf("transform test rows: %w", err)
	}

	model := spec.New()
	if err := model.Fit(ctx, xtr, ytr); err != nil {
		return score{}, err
	}
	pred, err := model.Predict(xte)
	if err != nil {
		return score{}, err
	}

	var sc score
	if sc.mse, err = MSE(yte, pred); err != nil {
		return score{}, err
	}
	if sc.r2, err = R2(yte, pred); err != nil {
		return score{}, err
	}
	_, sc.features = xtr.Dims()
	if cr, ok := prep.(columnReporter); ok {
		sc.columns = cr.Columns()
	}
	if lf, ok := model.(linearFit); ok {
		sc.coef, sc.intercept = lf.Coefficients()
	}
	return sc, nil
}

// Passthrough is a Preprocessor for rows that are already model-ready.
type Passthrough struct{}

// Fit does nothing.
func (Passthrough) Fit([][]float64, []float64) error { return nil }

// Transform copies rows into a dense matrix and returns y unchanged.
func (Passthrough) Transform(X [][]float64, y []float64) (*mat.Dense, []float64, error) {
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("passthrough: no rows: %w", ErrDimensionMismatch)
	}
	cols := len(X[0])
	if cols == 0 {
		return nil, nil, fmt.Errorf("passthrough: no columns: %w", ErrDimensionMismatch)
	}
	data := make([]float64, 0, len(X)*cols)
	for i, row := range X {
		if len(row) != cols {
			return nil, nil, fmt.Errorf("passthrough: row %d has %d values, want %d: %w", i, len(row), cols, ErrDimensionMismatch)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(X), cols, data), y, nil
}
