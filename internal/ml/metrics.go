// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MSE returns the mean squared error between truth and predictions.
func MSE(truth, pred []float64) (float64, error) {
	if len(truth) != len(pred) || len(truth) == 0 {
		return 0, fmt.Errorf("mse: %d targets, %d predictions: %w", len(truth), len(pred), ErrDimensionMismatch)
	}
	d := floats.Distance(truth, pred, 2)
	return d * d / float64(len(truth)), nil
}

// R2 returns the coefficient of determination. When truth is constant the
// score is 1 for exact predictions and 0 otherwise.
func R2(truth, pred []float64) (float64, error) {
	if len(truth) != len(pred) || len(truth) == 0 {
		return 0, fmt.Errorf("r2: %d targets, %d predictions: %w", len(truth), len(pred), ErrDimensionMismatch)
	}
	mean := stat.Mean(truth, nil)
	var ssRes, ssTot float64
	for i, t := range truth {
		ssRes += (t - pred[i]) * (t - pred[i])
		ssTot += (t - mean) * (t - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}
