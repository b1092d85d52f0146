// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is L2-regularized least squares. The intercept is not penalized.
type Ridge struct {
	baseModel
	linearModel
	alpha float64
}

// NewRidge creates an unfitted ridge model with the given penalty.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{baseModel: newBaseModel("Ridge"), alpha: alpha}
}

// Fit solves (XcᵀXc + αI)·coef = Xcᵀyc with a Cholesky factorization on
// centered data. A singular system, possible only when alpha is 0, falls
// back to the minimum-norm least squares solution.
func (m *Ridge) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	_, cols, err := checkFit(X, y)
	if err != nil {
		return err
	}
	if m.alpha < 0 {
		return fmt.Errorf("ridge: negative alpha %v", m.alpha)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	xc, xMeans, yc, yMean := center(X, y)

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	for j := 0; j < cols; j++ {
		gram.SetSym(j, j, gram.At(j, j)+m.alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(len(yc), yc))

	var coef []float64
	var chol mat.Cholesky
	if chol.Factorize(&gram) {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, &rhs); err != nil {
			return fmt.Errorf("ridge solve: %w", err)
		}
		coef = make([]float64, cols)
		for j := range coef {
			coef[j] = x.AtVec(j)
		}
	} else {
		coef, err = solveMinNorm(xc, yc, cols)
		if err != nil {
			return fmt.Errorf("ridge: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.coef = coef
	m.setIntercept(xMeans, yMean)
	m.markTrained(cols)
	return nil
}

// Predict returns X·coef + intercept.
func (m *Ridge) Predict(X mat.Matrix) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkPredict(X); err != nil {
		return nil, err
	}
	return m.predict(X), nil
}

// Coefficients returns a copy of the fitted coefficients and intercept.
func (m *Ridge) Coefficients() ([]float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.coef...), m.intercept
}
