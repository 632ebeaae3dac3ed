// Package testing provides a reusable test suite, benchmarks and a latency
// profiling helper for tree.Map implementations.
//
// The suite is driven by a TreeFactory so that every implementation of the
// interface can be verified against the same contract: ordering, balance
// and height invariants after every kind of mutation, snapshot and
// pagination semantics, combine-failure atomicity and the concurrency
// guarantees (no lost updates under contended read-modify-write, consistent
// trees observed by parallel readers).
//
// Usage from an engine package:
//
//	func Test(t *testing.T) {
//	    treetesting.RunTreeMapTests(t, "AVL", func() tree.Map[int64, int64] {
//	        return avl.New[int64, int64](nil)
//	    })
//	}
package testing
