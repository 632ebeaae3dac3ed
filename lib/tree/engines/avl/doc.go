// Package avl implements an ordered key-value map backed by an AVL tree,
// a height-balanced binary search tree. It provides a complete
// implementation of the tree.Map interface with a focus on thread safety
// and predictable O(log n) operations.
//
// The package focuses on:
//   - Strict key ordering with order-statistic pagination (Max/Min pages
//     with offset and limit) on top of the usual map operations
//   - Rotation-based rebalancing on insert and delete so that the height
//     stays within 1.44*log2(n)
//   - Atomic read-modify-write updates through combine functions, with the
//     guarantee that a failed combine leaves the tree completely unchanged
//   - Coarse-grained concurrency control through a single reader-writer
//     lock over the whole tree
//
// Key Components:
//
//   - treeImpl: The central structure implementing tree.Map. It owns the
//     tree root and the incrementally maintained entry count, both guarded
//     by one xsync.RBMutex. Every mutating operation (Set, Update, SetAll,
//     Delete, Clear) holds the write lock for its full duration, including
//     the execution of caller-supplied combine functions. Every pure query
//     holds the read lock, so readers proceed in parallel and always
//     observe a structurally consistent tree.
//
//   - internal.Node: The tree cell holding key, value, cached subtree
//     height and exclusively owned left/right subtrees. All structural
//     algorithms (insert with key-based rebalancing, delete with in-order
//     successor splicing and balance-factor-based rebalancing, the bounded
//     pagination walks, the full-height balance validator) live in the
//     internal package as pure recursive functions that consume a subtree
//     root and return the new one. Secondary results (was a key inserted,
//     which value was removed) travel as additional return values, never
//     through shared mutable state.
//
// Complexity:
//
//   - Set / Update / Get / Has / Delete: O(log n)
//   - Max / Min pagination: O(offset + limit + height)
//   - Keys / Values / Entries / HasValue / IsBalanced / GetInfo: O(n)
//   - Size / Height: O(1)
//
// The recursion depth of all structural operations is bounded by the tree
// height, therefore by ~1.44*log2(n), which is safe without explicit stack
// management for any realistic map size.
//
// Limitations: the single coarse lock serializes all writes, a combine
// function must not re-enter the map, and there is no persistence - the
// map lives and dies with the process.
package avl
