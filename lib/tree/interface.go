package tree

import "github.com/pkg/errors"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplAVL Implementation = "avl"
)

// Feature represents tree map features as bit flags
type Feature uint64

const (
	FeatureSet      Feature = 1 << iota // Support for Set operations
	FeatureUpdate                       // Support for atomic Update (read-modify-write) operations
	FeatureSetAll                       // Support for bulk SetAll operations
	FeatureGet                          // Support for Get operations
	FeatureDelete                       // Support for Delete operations
	FeatureHas                          // Support for Has operations
	FeatureHasValue                     // Support for (linear) HasValue operations
	FeatureSnapshot                     // Support for Keys/Values/Entries snapshots
	FeaturePaginate                     // Support for Max/Min order-statistic pagination
	FeatureValidate                     // Support for IsBalanced self checks
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureUpdate:
		return "Update"
	case FeatureSetAll:
		return "SetAll"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureHasValue:
		return "HasValue"
	case FeatureSnapshot:
		return "Snapshot"
	case FeaturePaginate:
		return "Paginate"
	case FeatureValidate:
		return "Validate"
	default:
		return "Unknown"
	}
}

// Entry is a single key-value pair. Slices of entries returned by snapshot
// and pagination operations preserve the traversal order of the tree.
type Entry[K, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// CompareFunc defines the total order of keys. It must return a negative
// number if a < b, zero if a == b and a positive number if a > b.
type CompareFunc[K any] func(a, b K) int

// CombineFunc computes the value to store for a key from the previously
// stored value. The loaded parameter is false if no value was stored for the
// key, in which case prev is the zero value of V. Returning a non-nil error
// aborts the mutation without changing the tree.
type CombineFunc[V any] func(prev V, loaded bool) (V, error)

// TreeInfo describes the state of a tree map instance.
// It is not guaranteed that the Metadata field is filled in by all implementations.
type TreeInfo struct {
	Size              int            `json:"size"`
	Height            int            `json:"height"`
	TreeType          Implementation `json:"tree_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrNegativeOffset is returned by Max/Min for an offset < 0.
	ErrNegativeOffset = errors.New("tree: negative offset")
	// ErrNegativeLimit is returned by Max/Min for a limit < 0.
	ErrNegativeLimit = errors.New("tree: negative limit")
	// ErrNilCombine is returned by Update when no combine function is supplied.
	ErrNilCombine = errors.New("tree: nil combine function")
)

// --------------------------------------------------------------------------
// Tree Map Interface
// --------------------------------------------------------------------------

// Map defines an interface for ordered key-value map implementations.
// Keys are unique and totally ordered; implementations keep entries sorted
// by key at all times so that order-statistic queries (Max/Min pagination)
// are available in addition to the usual map operations.
//
// All methods are safe for concurrent use by multiple goroutines.
// Implementations can vary in their feature support, which can be queried
// with SupportsFeature.
type Map[K, V any] interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates the entry for the given key.
	// If the key already exists, the old value is overwritten.
	Set(key K, value V)

	// Update atomically inserts or updates the entry for the given key using
	// the combine function. The whole read-modify-write cycle happens under a
	// single write-lock acquisition, so no concurrent mutation can interleave.
	// The returned bool reports whether a new key was inserted (as opposed to
	// an existing value being replaced).
	//
	// If combine returns an error the tree is left completely unchanged and
	// the error is returned to the caller.
	//
	// The combine function runs while the write lock is held. It must not
	// call back into the same map, doing so deadlocks.
	Update(key K, combine CombineFunc[V]) (inserted bool, err error)

	// SetAll inserts or updates all given entries under a single write-lock
	// acquisition.
	SetAll(entries []Entry[K, V])

	// Delete removes the entry for the given key and returns the removed
	// value. The bool reports whether the key was present; deleting an absent
	// key is a no-op.
	Delete(key K) (removed V, found bool)

	// Clear removes all entries.
	Clear()

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get returns the value stored for the given key.
	// The bool reports whether the key was found.
	Get(key K) (value V, found bool)

	// Has reports whether a key exists in the map.
	Has(key K) bool

	// HasValue reports whether any entry stores the given value.
	// Unlike key lookups this is a full O(n) scan of the tree.
	HasValue(value V) bool

	// Size returns the number of entries. O(1).
	Size() int

	// IsEmpty reports whether the map holds no entries.
	IsEmpty() bool

	// Height returns the cached height of the underlying tree. O(1).
	Height() int

	// --------------------------------------------------------------------------
	// Snapshot Operations
	// --------------------------------------------------------------------------

	// Keys returns all keys in ascending order.
	// The returned slice is a point-in-time copy, not a live view.
	Keys() []K

	// Values returns all values in ascending key order.
	// The returned slice is a point-in-time copy, not a live view.
	Values() []V

	// Entries returns all entries in ascending key order.
	// The returned slice is a point-in-time copy, not a live view.
	Entries() []Entry[K, V]

	// --------------------------------------------------------------------------
	// Order-Statistic Operations
	// --------------------------------------------------------------------------

	// Max returns up to limit entries in descending key order, skipping the
	// first offset entries. The result preserves the descending traversal
	// order. Only O(offset+limit+height) nodes are visited.
	Max(offset, limit int) ([]Entry[K, V], error)

	// Min returns up to limit entries in ascending key order, skipping the
	// first offset entries. The result preserves the ascending traversal
	// order. Only O(offset+limit+height) nodes are visited.
	Min(offset, limit int) ([]Entry[K, V], error)

	// --------------------------------------------------------------------------
	// Diagnostics
	// --------------------------------------------------------------------------

	// IsBalanced recomputes every subtree height from scratch and reports
	// whether the balance invariant holds. O(n), intended for tests and
	// debugging, not for hot paths.
	IsBalanced() bool

	// String renders the keys in ascending order, comma separated.
	// For debugging only, the format is not a stable contract.
	String() string

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the tree map.
	GetInfo() (info TreeInfo)
}
