// Package util provides statistics utilities for tree map implementations.
// This file implements a node depth histogram used to describe the shape of
// a balanced tree without retaining per-node data: engines feed it during a
// single walk and report the aggregates through their GetInfo metadata.
package util

import (
	"math"
	"sync"
)

// ----------------------------------------------------------------------------
// Helper functions
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
}

// NewStats computes the standard deviation, minimum, maximum and mean
// from an array of float64 values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	// initialize min and max with the first value
	min := values[0]
	max := values[0]

	// calculate sum for mean
	var sum float64
	for _, v := range values {
		sum += v

		// update min and max while iterating
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// calculate mean
	mean := sum / float64(len(values))

	// calculate sum of squared differences from mean
	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	// calculate standard deviation (population formula)
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(values)))

	return Stats{
		StdDeviation: stdDev,
		Min:          min,
		Max:          max,
		Mean:         mean,
	}
}

// ----------------------------------------------------------------------------
// DepthHistogram
// ----------------------------------------------------------------------------

// DepthHistogram tracks how many nodes and leaves a tree holds at each depth
// level (the root has depth 0). It stores one counter per level, so the
// memory footprint is proportional to the tree height, not the tree size.
type DepthHistogram struct {
	mutex  sync.RWMutex
	levels []int64 // node count per depth level, grown on demand
	leaves []int64 // leaf count per depth level, grown on demand
	count  int64   // total number of nodes
	sum    int64   // sum of all node depths
}

// NewDepthHistogram creates an empty depth histogram
func NewDepthHistogram() *DepthHistogram {
	return &DepthHistogram{}
}

// AddNode records one node at the given depth. Leaves are additionally
// tracked separately, their depth spread is the most telling balance signal.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) AddNode(depth int, leaf bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for len(h.levels) <= depth {
		h.levels = append(h.levels, 0)
		h.leaves = append(h.leaves, 0)
	}

	h.levels[depth]++
	if leaf {
		h.leaves[depth]++
	}
	h.count++
	h.sum += int64(depth)
}

// NodeCount returns the total number of recorded nodes
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) NodeCount() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// MeanDepth returns the average depth across all recorded nodes
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) MeanDepth() float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return float64(h.sum) / float64(h.count)
}

// LeafDepthStats returns statistics over the depths of all recorded leaves.
// For a height-balanced tree the min/max spread stays small.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) LeafDepthStats() Stats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var depths []float64
	for depth, n := range h.leaves {
		for i := int64(0); i < n; i++ {
			depths = append(depths, float64(depth))
		}
	}
	return NewStats(depths)
}

// LevelFill compares the recorded node count against a perfectly filled
// binary tree of the same height. 1.0 means a complete tree, values close
// to 0 mean a degenerate, path-like shape.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) LevelFill() float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 1.0
	}
	// a tree with levels 0..d-1 completely filled holds 2^d - 1 nodes
	capacity := math.Pow(2, float64(len(h.levels))) - 1
	return float64(h.count) / capacity
}

// PerLevel returns a copy of the node count per depth level
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) PerLevel() []int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make([]int64, len(h.levels))
	copy(out, h.levels)
	return out
}

// Reset clears all histogram data
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.levels = nil
	h.leaves = nil
	h.count = 0
	h.sum = 0
}
