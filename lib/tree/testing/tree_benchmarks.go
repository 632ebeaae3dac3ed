package testing

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/tKV/lib/tree"
)

// RunTreeMapBenchmarks runs all benchmarks for a tree.Map implementation
func RunTreeMapBenchmarks(b *testing.B, name string, factory TreeFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("Update", func(b *testing.B) {
		benchmarkUpdate(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Has", func(b *testing.B) {
		benchmarkHas(b, factory())
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("MaxPage", func(b *testing.B) {
		benchmarkMaxPage(b, factory())
	})

	b.Run("MinPage", func(b *testing.B) {
		benchmarkMinPage(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation with fresh keys
func benchmarkSet(b *testing.B, m tree.Map[int64, int64]) {
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			m.Set(i, i)
		}
	})
}

// Benchmark for Set operation with existing keys
func benchmarkSetExisting(b *testing.B, m tree.Map[int64, int64]) {

	// Prepare data
	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := int64(0)
		for pb.Next() {
			m.Set(counter%numKeys, counter)
			counter++
		}
	})
}

// Benchmark for atomic read-modify-write updates on a contended key
func benchmarkUpdate(b *testing.B, m tree.Map[int64, int64]) {

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = m.Update(1, func(prev int64, _ bool) (int64, error) {
				return prev + 1, nil
			})
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, m tree.Map[int64, int64]) {

	// Prepare data
	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := int64(0)
		for pb.Next() {
			m.Get(counter % numKeys)
			counter++
		}
	})
}

// Parallel benchmarking for Has operation with existing keys
func benchmarkHas(b *testing.B, m tree.Map[int64, int64]) {

	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := int64(0)
		for pb.Next() {
			m.Has(counter % numKeys)
			counter++
		}
	})
}

// Parallel benchmarking for Has operation with absent keys
func benchmarkHasNot(b *testing.B, m tree.Map[int64, int64]) {

	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := int64(0)
		for pb.Next() {
			m.Has(numKeys + counter%numKeys)
			counter++
		}
	})
}

// Parallel benchmarking for Delete operation
func benchmarkDelete(b *testing.B, m tree.Map[int64, int64]) {

	numKeys := int64(100000)
	if int64(b.N) > numKeys {
		numKeys = int64(b.N)
	}
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Delete(counter.Add(1) - 1)
		}
	})
}

// Parallel benchmarking for descending pagination
func benchmarkMaxPage(b *testing.B, m tree.Map[int64, int64]) {

	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = m.Max(counter%128, 10)
			counter++
		}
	})
}

// Parallel benchmarking for ascending pagination
func benchmarkMinPage(b *testing.B, m tree.Map[int64, int64]) {

	const numKeys = 100000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = m.Min(counter%128, 10)
			counter++
		}
	})
}

// Benchmark for a realistic mix of reads, writes and pages
func benchmarkMixedUsage(b *testing.B, m tree.Map[int64, int64]) {

	const numKeys = 10000
	for i := int64(0); i < numKeys; i++ {
		m.Set(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			k := rng.Int63n(numKeys)
			switch rng.Intn(10) {
			case 0:
				m.Set(k, k)
			case 1:
				m.Delete(k)
			case 2:
				_, _ = m.Max(0, 10)
			default:
				m.Get(k)
			}
		}
	})
}
