// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package ml splits encoded datasets and evaluates regression baselines.
//
// Three regressors are provided: ordinary least squares, ridge regression and
// a bootstrap random forest of CART trees. All work on gonum dense matrices
// whose rows are samples and whose columns are features.
//
// # Thread Safety
//
// Models are safe for concurrent use. Fit takes an exclusive lock while
// Predict takes a shared one.
package ml

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrDimensionMismatch is returned when matrix and target shapes disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Regressor is a trainable model predicting one continuous target.
type Regressor interface {
	// Name returns the model identifier used in logs and reports.
	Name() string

	// Fit trains the model on X (samples by features) and y.
	Fit(ctx context.Context, X mat.Matrix, y []float64) error

	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) ([]float64, error)
}

// baseModel provides the bookkeeping shared by all regressors.
type baseModel struct {
	name     string
	trained  bool
	features int
	mu       sync.RWMutex
}

func newBaseModel(name string) baseModel {
	return baseModel{name: name}
}

// Name returns the model identifier.
func (b *baseModel) Name() string {
	return b.name
}

// markTrained must be called with mu held for writing.
func (b *baseModel) markTrained(features int) {
	b.trained = true
	b.features = features
}

// checkFit validates training input shapes.
func checkFit(X mat.Matrix, y []float64) (rows, cols int, err error) {
	rows, cols = X.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, fmt.Errorf("empty training matrix: %w", ErrDimensionMismatch)
	}
	if rows != len(y) {
		return 0, 0, fmt.Errorf("%d rows but %d targets: %w", rows, len(y), ErrDimensionMismatch)
	}
	return rows, cols, nil
}

// checkPredict must be called with mu held for reading.
func (b *baseModel) checkPredict(X mat.Matrix) error {
	if !b.trained {
		return ErrNotFitted
	}
	if _, c := X.Dims(); c != b.features {
		return fmt.Errorf("%s: got %d features, fitted on %d: %w", b.name, c, b.features, ErrDimensionMismatch)
	}
	return nil
}
