// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package features

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotFitted is returned by Transform before Fit.
	ErrNotFitted = errors.New("preprocessor is not fitted")

	// ErrNoFeatures is returned when every column falls under the variance threshold.
	ErrNoFeatures = errors.New("no feature column above the variance threshold")

	// ErrNoTarget is returned when the fitted rows hold no numeric rating.
	ErrNoTarget = errors.New("no numeric target value to impute from")
)

// Preprocessor imputes missing values with column means, drops columns whose
// sample variance is at or below a threshold, and standardizes the year
// column. All statistics come from the rows passed to Fit.
type Preprocessor struct {
	columns   []string
	threshold float64
	scale     string

	featureMeans []float64
	targetMean   float64
	keep         []int
	scaleAt      int // position of the scaled column within keep, or -1
	scaleMean    float64
	scaleStd     float64
	fitted       bool
}

// NewPreprocessor creates a preprocessor for the given encoded columns.
// The column named YearColumn is standardized when it survives filtering.
func NewPreprocessor(columns []string, threshold float64) *Preprocessor {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Preprocessor{columns: cols, threshold: threshold, scale: YearColumn, scaleAt: -1}
}

// Fit computes imputation means, the retained columns and scaling statistics.
func (p *Preprocessor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrNoRows
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit: %d rows but %d targets", len(X), len(y))
	}
	for i, row := range X {
		if len(row) != len(p.columns) {
			return fmt.Errorf("fit: row %d has %d values, want %d", i, len(row), len(p.columns))
		}
	}

	p.fitted = false
	p.featureMeans = make([]float64, len(p.columns))
	for j := range p.columns {
		p.featureMeans[j] = nanMean(column(X, j))
	}
	p.targetMean = nanMean(y)
	if math.IsNaN(p.targetMean) {
		return ErrNoTarget
	}

	imputed, _ := p.impute(X, nil)

	p.keep = p.keep[:0]
	p.scaleAt = -1
	for j, name := range p.columns {
		// stat.Variance is the unbiased (n-1) estimator; it is NaN for a single row.
		if v := stat.Variance(column(imputed, j), nil); v > p.threshold {
			if name == p.scale {
				p.scaleAt = len(p.keep)
			}
			p.keep = append(p.keep, j)
		}
	}
	if len(p.keep) == 0 {
		return ErrNoFeatures
	}

	if p.scaleAt >= 0 {
		mean, variance := stat.PopMeanVariance(column(imputed, p.keep[p.scaleAt]), nil)
		p.scaleMean = mean
		p.scaleStd = math.Sqrt(variance)
		if p.scaleStd == 0 {
			p.scaleStd = 1
		}
	}

	p.fitted = true
	return nil
}

// Impute fills NaN features and targets with the fitted means without
// filtering or scaling. y may be nil.
func (p *Preprocessor) Impute(X [][]float64, y []float64) ([][]float64, []float64, error) {
	if p.featureMeans == nil {
		return nil, nil, ErrNotFitted
	}
	xi, yi := p.impute(X, y)
	return xi, yi, nil
}

// Transform imputes, selects the retained columns and scales year.
// y may be nil, in which case the returned target is nil.
func (p *Preprocessor) Transform(X [][]float64, y []float64) (*mat.Dense, []float64, error) {
	if !p.fitted {
		return nil, nil, ErrNotFitted
	}
	if len(X) == 0 {
		return nil, nil, ErrNoRows
	}
	if y != nil && len(y) != len(X) {
		return nil, nil, fmt.Errorf("transform: %d rows but %d targets", len(X), len(y))
	}

	imputed, target := p.impute(X, y)
	data := make([]float64, 0, len(X)*len(p.keep))
	for _, row := range imputed {
		for k, j := range p.keep {
			v := row[j]
			if k == p.scaleAt {
				v = (v - p.scaleMean) / p.scaleStd
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(X), len(p.keep), data), target, nil
}

// Columns returns the names of the retained columns in output order.
func (p *Preprocessor) Columns() []string {
	out := make([]string, len(p.keep))
	for i, j := range p.keep {
		out[i] = p.columns[j]
	}
	return out
}

// Dropped returns the names of the columns removed by the variance filter.
func (p *Preprocessor) Dropped() []string {
	kept := make(map[int]bool, len(p.keep))
	for _, j := range p.keep {
		kept[j] = true
	}
	var out []string
	for j, name := range p.columns {
		if !kept[j] {
			out = append(out, name)
		}
	}
	return out
}

func (p *Preprocessor) impute(X [][]float64, y []float64) ([][]float64, []float64) {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				v = p.featureMeans[j]
			}
			r[j] = v
		}
		out[i] = r
	}

	if y == nil {
		return out, nil
	}
	target := make([]float64, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			v = p.targetMean
		}
		target[i] = v
	}
	return out, target
}

// nanMean is the mean of the non-NaN values, or NaN when there are none.
func nanMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, v := range xs {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func column(X [][]float64, j int) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = row[j]
	}
	return out
}
