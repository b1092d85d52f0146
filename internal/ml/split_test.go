// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		ratio    float64
		wantTest int
	}{
		{"hundred rows", 100, 0.2, 20},
		{"rounds up", 11, 0.2, 3},
		{"two rows", 2, 0.2, 1},
		{"large ratio keeps one train row", 3, 0.99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := TrainTestSplit(tt.n, tt.ratio, 42)
			require.NoError(t, err)
			assert.Len(t, split.Test, tt.wantTest)
			assert.Len(t, split.Train, tt.n-tt.wantTest)

			all := append(append([]int(nil), split.Train...), split.Test...)
			sort.Ints(all)
			for i, v := range all {
				assert.Equal(t, i, v, "indices must be a disjoint cover")
			}
		})
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	a, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := TrainTestSplit(50, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, c.Test)
}

func TestTrainTestSplit_Errors(t *testing.T) {
	_, err := TrainTestSplit(1, 0.2, 42)
	assert.Error(t, err)
	_, err = TrainTestSplit(10, 0, 42)
	assert.Error(t, err)
	_, err = TrainTestSplit(10, 1, 42)
	assert.Error(t, err)
}

func TestKFold(t *testing.T) {
	folds, err := KFold(12, 5)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	sizes := make([]int, len(folds))
	seen := make(map[int]int)
	for i, f := range folds {
		sizes[i] = len(f.Test)
		assert.Len(t, f.Train, 12-len(f.Test))
		for _, idx := range f.Test {
			seen[idx]++
			assert.NotContains(t, f.Train, idx)
		}
	}
	assert.Equal(t, []int{3, 3, 2, 2, 2}, sizes)
	assert.Len(t, seen, 12)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "row %d tested once", idx)
	}
	assert.Equal(t, []int{0, 1, 2}, folds[0].Test)
	assert.Equal(t, []int{10, 11}, folds[4].Test)
}

func TestKFold_Errors(t *testing.T) {
	_, err := KFold(10, 1)
	assert.Error(t, err)
	_, err = KFold(3, 5)
	assert.Error(t, err)
}
