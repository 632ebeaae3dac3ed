package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	assert.Equal(t, 5.0, stats.Mean)
	assert.InDelta(t, 2.0, stats.StdDeviation, 1e-9)

	// no samples, no stats
	assert.Equal(t, Stats{}, NewStats(nil))
}

func TestDepthHistogram(t *testing.T) {
	h := NewDepthHistogram()

	// a perfect tree of height 2: one root, two leaves
	h.AddNode(0, false)
	h.AddNode(1, true)
	h.AddNode(1, true)

	assert.Equal(t, int64(3), h.NodeCount())
	assert.InDelta(t, 2.0/3.0, h.MeanDepth(), 1e-9)
	assert.Equal(t, []int64{1, 2}, h.PerLevel())
	assert.InDelta(t, 1.0, h.LevelFill(), 1e-9)

	leafStats := h.LeafDepthStats()
	assert.Equal(t, 1.0, leafStats.Min)
	assert.Equal(t, 1.0, leafStats.Max)

	h.Reset()
	assert.Equal(t, int64(0), h.NodeCount())
	assert.Equal(t, 1.0, h.LevelFill())
}

func TestDepthHistogramDegenerateShape(t *testing.T) {
	h := NewDepthHistogram()

	// a path of 8 nodes fills its levels as badly as possible
	for depth := 0; depth < 8; depth++ {
		h.AddNode(depth, depth == 7)
	}

	assert.Less(t, h.LevelFill(), 0.05)
}

func TestDepthHistogramConcurrentAdd(t *testing.T) {
	h := NewDepthHistogram()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h.AddNode(i%16, i%4 == 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), h.NodeCount())
}
