// Package store provides a high-level interface for ordered key-value
// storage with unified error handling. It serves as an abstraction layer
// over the lower-level tree.Map implementations, adding feature gating and
// standardized error reporting.
//
// The package focuses on:
//   - A unified interface (ISortedStore) for ordered key-value operations
//   - Pluggable tree backend architecture through the TreeFactory pattern
//
// Key Components:
//
//   - ISortedStore Interface: The core abstraction defining operations for
//     interacting with an ordered key-value store. All implementations share
//     this common interface, allowing applications to switch between
//     different tree backends without code changes. The interface methods
//     return custom Error types that provide detailed information about
//     operation results.
//
//   - Error System: A structured error reporting mechanism using typed
//     error codes and descriptive messages. This system allows applications
//     to make informed decisions based on specific error conditions rather
//     than generic errors.
//
//   - TreeFactory: A function type that abstracts the creation of underlying
//     tree.Map instances, providing dependency injection and flexible
//     configuration of tree backends.
//
// The package includes one implementation of the ISortedStore interface:
// the sorted store (sstore), which wraps a single in-process tree map and
// instruments every operation with metrics counters.
package store
