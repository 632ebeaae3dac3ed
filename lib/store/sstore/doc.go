// Package sstore implements the store.ISortedStore interface on top of a
// single in-process tree.Map instance.
//
// The implementation adds three things over the raw tree map: feature
// gating (operations the backing tree does not advertise return a typed
// UnsupportedOperation error instead of misbehaving), translation of tree
// level errors into the store error system (invalid pagination arguments,
// failed combine functions), and per-operation metrics counters exposed
// through the VictoriaMetrics default set.
//
// Thread-safety: the store itself holds no mutable state, all concurrency
// control lives in the underlying tree map.
package sstore
