// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// linearData returns rows of two features with y = 3 + 2*x0 - 0.5*x1.
func linearData(n int) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(1))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := rng.Float64()*10, rng.Float64()*10
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		y[i] = 3 + 2*a - 0.5*b
	}
	return X, y
}

func TestLinearRegression_RecoversLinearFunction(t *testing.T) {
	X, y := linearData(40)
	m := NewLinearRegression()
	require.NoError(t, m.Fit(context.Background(), X, y))

	coef, intercept := m.Coefficients()
	assert.InDelta(t, 2.0, coef[0], 1e-8)
	assert.InDelta(t, -0.5, coef[1], 1e-8)
	assert.InDelta(t, 3.0, intercept, 1e-8)

	pred, err := m.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pred[0], 1e-8)
}

func TestLinearRegression_CollinearColumns(t *testing.T) {
	// The second and third columns are complementary one-hot indicators.
	X := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		2, 0, 1,
		3, 1, 0,
		4, 0, 1,
	})
	y := []float64{2, 4, 6, 8}

	m := NewLinearRegression()
	require.NoError(t, m.Fit(context.Background(), X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-8)
	}
	coef, _ := m.Coefficients()
	assert.InDelta(t, 0, coef[1]+coef[2], 1e-8, "collinear indicators get no weight")
}

func TestRidge_ShrinksWithAlpha(t *testing.T) {
	X, y := linearData(40)

	var prev = math.Inf(1)
	for _, alpha := range []float64{0, 1, 100, 10000} {
		m := NewRidge(alpha)
		require.NoError(t, m.Fit(context.Background(), X, y))
		coef, _ := m.Coefficients()
		norm := math.Hypot(coef[0], coef[1])
		assert.Less(t, norm, prev, "alpha %v", alpha)
		prev = norm
	}

	m := NewRidge(0)
	require.NoError(t, m.Fit(context.Background(), X, y))
	coef, intercept := m.Coefficients()
	assert.InDelta(t, 2.0, coef[0], 1e-8)
	assert.InDelta(t, 3.0, intercept, 1e-8)
}

func TestRidge_RejectsNegativeAlpha(t *testing.T) {
	X, y := linearData(5)
	assert.Error(t, NewRidge(-1).Fit(context.Background(), X, y))
}

func TestRandomForest_Deterministic(t *testing.T) {
	X, y := linearData(60)
	cfg := ForestConfig{Trees: 15, MinSamplesLeaf: 1, Seed: 42}

	a := NewRandomForest(cfg)
	require.NoError(t, a.Fit(context.Background(), X, y))
	b := NewRandomForest(cfg)
	require.NoError(t, b.Fit(context.Background(), X, y))

	pa, err := a.Predict(X)
	require.NoError(t, err)
	pb, err := b.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)

	r2, err := R2(y, pa)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.8, "forest should fit its training data closely")
}

func TestTreeGrower_StepFunction(t *testing.T) {
	g := treeGrower{
		x:       [][]float64{{1}, {2}, {3}, {10}, {11}, {12}},
		y:       []float64{5, 5, 5, 9, 9, 9},
		minLeaf: 1,
	}
	root := g.grow([]int{0, 1, 2, 3, 4, 5}, 0)

	require.NotNil(t, root.left)
	assert.Equal(t, 0, root.feature)
	assert.Equal(t, 6.5, root.threshold)
	assert.Nil(t, root.left.left, "pure children are leaves")
	assert.Equal(t, 5.0, root.predict([]float64{0}))
	assert.Equal(t, 9.0, root.predict([]float64{20}))
}

func TestRandomForest_MaxDepth(t *testing.T) {
	X, y := linearData(30)
	m := NewRandomForest(ForestConfig{Trees: 3, MaxDepth: 1, Seed: 1})
	require.NoError(t, m.Fit(context.Background(), X, y))

	for _, root := range m.trees {
		if root.left != nil {
			assert.Nil(t, root.left.left)
			assert.Nil(t, root.right.left)
		}
	}
}

func TestRandomForest_Cancelled(t *testing.T) {
	X, y := linearData(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRandomForest(DefaultForestConfig()).Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegressors_Errors(t *testing.T) {
	models := []Regressor{NewLinearRegression(), NewRidge(1), NewRandomForest(DefaultForestConfig())}
	for _, m := range models {
		t.Run(m.Name(), func(t *testing.T) {
			_, err := m.Predict(mat.NewDense(1, 2, nil))
			assert.ErrorIs(t, err, ErrNotFitted)

			err = m.Fit(context.Background(), mat.NewDense(3, 2, nil), []float64{1, 2})
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			X, y := linearData(10)
			require.NoError(t, m.Fit(context.Background(), X, y))
			_, err = m.Predict(mat.NewDense(1, 3, nil))
			assert.ErrorIs(t, err, ErrDimensionMismatch)
		})
	}
}

func TestMetrics(t *testing.T) {
	mse, err := MSE([]float64{1, 2, 3}, []float64{1, 2, 5})
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, mse, 1e-12)

	tests := []struct {
		name  string
		truth []float64
		pred  []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"mean predictor", []float64{1, 2, 3}, []float64{2, 2, 2}, 0},
		{"worse than mean", []float64{1, 2, 3}, []float64{3, 2, 1}, -3},
		{"constant exact", []float64{4, 4}, []float64{4, 4}, 1},
		{"constant inexact", []float64{4, 4}, []float64{4, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2(tt.truth, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err = R2([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = MSE(nil, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
