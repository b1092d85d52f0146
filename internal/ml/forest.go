// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ml

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// minImpurityDecrease is the smallest squared error reduction accepted as a split.
const minImpurityDecrease = 1e-12

// ForestConfig configures a RandomForest.
type ForestConfig struct {
	Trees int
	// MaxDepth of 0 means unlimited.
	MaxDepth       int
	MinSamplesLeaf int
	Seed           int64
}

// DefaultForestConfig returns 100 fully grown trees seeded with 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MinSamplesLeaf: 1, Seed: 42}
}

// RandomForest averages regression trees grown on bootstrap samples.
// Trees are grown sequentially from one seeded generator, so a fixed seed
// and input always produce the same forest.
type RandomForest struct {
	baseModel
	cfg   ForestConfig
	trees []*treeNode
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.Trees < 1 {
		cfg.Trees = 1
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	return &RandomForest{baseModel: newBaseModel("RandomForest"), cfg: cfg}
}

// Fit grows cfg.Trees trees. The context is checked between trees.
func (m *RandomForest) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	rows, cols, err := checkFit(X, y)
	if err != nil {
		return err
	}

	data := toRows(X)
	rng := rand.New(rand.NewSource(m.cfg.Seed))
	grower := treeGrower{x: data, y: y, maxDepth: m.cfg.MaxDepth, minLeaf: m.cfg.MinSamplesLeaf}

	trees := make([]*treeNode, 0, m.cfg.Trees)
	sample := make([]int, rows)
	for t := 0; t < m.cfg.Trees; t++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("forest interrupted after %d trees: %w", t, ctx.Err())
		default:
		}
		for i := range sample {
			sample[i] = rng.Intn(rows)
		}
		trees = append(trees, grower.grow(append([]int(nil), sample...), 0))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees = trees
	m.markTrained(cols)
	return nil
}

// Predict averages the tree predictions for each row.
func (m *RandomForest) Predict(X mat.Matrix) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkPredict(X); err != nil {
		return nil, err
	}

	data := toRows(X)
	preds := make([]float64, len(data))
	for i, row := range data {
		var sum float64
		for _, tree := range m.trees {
			sum += tree.predict(row)
		}
		preds[i] = sum / float64(len(m.trees))
	}
	return preds, nil
}

// treeNode is a split node, or a leaf when left is nil.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(row []float64) float64 {
	for n.left != nil {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeGrower builds CART regression trees by greedy variance reduction.
type treeGrower struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
}

func (g *treeGrower) grow(idx []int, depth int) *treeNode {
	var sum, sumSq float64
	for _, i := range idx {
		sum += g.y[i]
		sumSq += g.y[i] * g.y[i]
	}
	n := float64(len(idx))
	node := &treeNode{value: sum / n}

	if len(idx) < 2*g.minLeaf || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return node
	}
	parentSSE := sumSq - sum*sum/n
	if parentSSE <= minImpurityDecrease {
		return node
	}

	feature, threshold, ok := g.bestSplit(idx, parentSSE)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if g.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	node.feature = feature
	node.threshold = threshold
	node.left = g.grow(left, depth+1)
	node.right = g.grow(right, depth+1)
	return node
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children.
func (g *treeGrower) bestSplit(idx []int, parentSSE float64) (int, float64, bool) {
	bestFeature, bestThreshold := -1, 0.0
	bestSSE := parentSSE - minImpurityDecrease

	sorted := make([]int, len(idx))
	for f := range g.x[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return g.x[sorted[a]][f] < g.x[sorted[b]][f]
		})

		var total, totalSq float64
		for _, i := range sorted {
			total += g.y[i]
			totalSq += g.y[i] * g.y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < len(sorted); k++ {
			v := g.y[sorted[k-1]]
			leftSum += v
			leftSq += v * v

			if k < g.minLeaf || len(sorted)-k < g.minLeaf {
				continue
			}
			lo, hi := g.x[sorted[k-1]][f], g.x[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(len(sorted)-k)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold >= hi {
					bestThreshold = lo
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// toRows copies a matrix into row slices.
func toRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = X.At(i, j)
		}
	}
	return out
}
