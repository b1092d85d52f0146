// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// singularRcond is the relative singular value cutoff for rank detection.
const singularRcond = 1e-10

// linearModel is y = X·coef + intercept.
type linearModel struct {
	coef      []float64
	intercept float64
}

func (l *linearModel) predict(X mat.Matrix) []float64 {
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(len(l.coef), l.coef))
	preds := make([]float64, out.Len())
	for i := range preds {
		preds[i] = out.AtVec(i) + l.intercept
	}
	return preds
}

// setIntercept derives the intercept from the column and target means the
// centered solve removed.
func (l *linearModel) setIntercept(xMeans []float64, yMean float64) {
	l.intercept = yMean
	for j, m := range xMeans {
		l.intercept -= m * l.coef[j]
	}
}

// LinearRegression is ordinary least squares with an intercept. Rank
// deficient designs, such as collinear one-hot columns, get the
// minimum-norm solution.
type LinearRegression struct {
	baseModel
	linearModel
}

// NewLinearRegression creates an unfitted OLS model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{baseModel: newBaseModel("LinearRegression")}
}

// Fit solves the centered least squares problem via SVD.
func (m *LinearRegression) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	_, cols, err := checkFit(X, y)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	xc, xMeans, yc, yMean := center(X, y)
	coef, err := solveMinNorm(xc, yc, cols)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.coef = coef
	m.setIntercept(xMeans, yMean)
	m.markTrained(cols)
	return nil
}

// Predict returns X·coef + intercept.
func (m *LinearRegression) Predict(X mat.Matrix) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkPredict(X); err != nil {
		return nil, err
	}
	return m.predict(X), nil
}

// Coefficients returns a copy of the fitted coefficients and intercept.
func (m *LinearRegression) Coefficients() ([]float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.coef...), m.intercept
}

// center subtracts column means from X and the mean from y.
func center(X mat.Matrix, y []float64) (*mat.Dense, []float64, []float64, float64) {
	rows, cols := X.Dims()
	xc := mat.DenseCopyOf(X)
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, xc), nil)
		for i := 0; i < rows; i++ {
			xc.Set(i, j, xc.At(i, j)-means[j])
		}
	}

	yMean := stat.Mean(y, nil)
	yc := make([]float64, len(y))
	for i, v := range y {
		yc[i] = v - yMean
	}
	return xc, means, yc, yMean
}

// solveMinNorm returns the minimum-norm least squares solution of A·x = b.
func solveMinNorm(a *mat.Dense, b []float64, cols int) ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("svd factorization failed")
	}

	coef := make([]float64, cols)
	rank := svd.Rank(singularRcond)
	if rank == 0 {
		return coef, nil
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, mat.NewVecDense(len(b), b), rank)
	for j := range coef {
		coef[j] = x.AtVec(j)
	}
	return coef, nil
}
