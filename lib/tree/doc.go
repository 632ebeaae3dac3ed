// Package tree provides a standardized interface for ordered key-value map
// implementations. It defines a generic Map interface that allows consistent
// interaction with different backing tree structures while abstracting
// implementation details.
//
// The package focuses on:
//   - A unified interface for ordered map operations
//   - Order-statistic pagination (Max/Min pages by key with offset and limit)
//   - Atomic read-modify-write updates through combine functions
//   - Feature discovery through capability flags
//
// Key Components:
//
//   - Map Interface: The core interface that all tree map implementations must
//     satisfy. It provides basic map operations (Set, Get, Has, Delete),
//     atomic updates (Update, SetAll), ordered snapshots (Keys, Values,
//     Entries), order-statistic queries (Max, Min) and diagnostics
//     (IsBalanced, GetInfo).
//
//   - Feature Flags: The Feature type defines capability flags that
//     implementations can advertise through the SupportsFeature method. This
//     allows clients to discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string
//     constants for different tree backends (currently "avl").
//
//   - TreeInfo: A standardized report of the tree state including entry
//     count, height, implementation type and implementation-specific
//     metadata.
//
// All implementations must be safe for concurrent use: writers are mutually
// exclusive with each other and with readers, multiple readers may proceed
// in parallel, and a completed write happens-before any subsequently
// acquired read. There is one sharp edge inherent to this model: a combine
// function passed to Update runs while the write lock is held. If it calls
// back into the same map instance it deadlocks. This is documented as
// forbidden reentry and is not detected at runtime.
package tree
