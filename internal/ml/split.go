// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// Split holds disjoint row indices for training and testing.
type Split struct {
	Train []int
	Test  []int
}

// Fold is one cross-validation round.
type Fold struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with a seeded generator and holds
// out ceil(n*testRatio) of them for testing. The same inputs always yield
// the same partition.
func TrainTestSplit(n int, testRatio float64, seed int64) (Split, error) {
	if n < 2 {
		return Split{}, fmt.Errorf("split: need at least 2 rows, have %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return Split{}, fmt.Errorf("split: test ratio %v outside (0, 1)", testRatio)
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Split{
		Test:  perm[:nTest],
		Train: perm[nTest:],
	}, nil
}

// KFold partitions n rows into k contiguous, unshuffled folds. The first
// n%k folds hold one extra row.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("kfold: need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("kfold: cannot make %d folds from %d rows", k, n)
	}

	folds := make([]Fold, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size

		test := make([]int, 0, size)
		train := make([]int, 0, n-size)
		for i := 0; i < n; i++ {
			if i >= start && i < end {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}
