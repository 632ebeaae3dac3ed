package avl

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/ValentinKolb/tKV/lib/tree"
	"github.com/ValentinKolb/tKV/lib/tree/engines/avl/internal"
	"github.com/ValentinKolb/tKV/lib/tree/util"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core AVL tree map structure
// --------------------------------------------------------------------------

// treeImpl implements tree.Map backed by a height-balanced binary search
// tree. One reader-writer lock guards the whole {root, size} state: all
// mutations are serialized against each other and against readers, while
// pure queries may proceed in parallel. This coarse single lock is a
// deliberate first cut, sharding or finer locking is out of scope.
type treeImpl[K, V any] struct {
	guard *xsync.RBMutex       // single reader-writer lock over root and size
	cmp   tree.CompareFunc[K]  // total order of keys
	eq    func(a, b V) bool    // value equality for HasValue
	root  *internal.Node[K, V] // owned tree root, nil when empty
	size  int                  // entry count, maintained incrementally
}

// Options configures a tree map instance during initialization
type Options[V any] struct {
	// ValueEqual is the equality used by HasValue. If nil, values are
	// compared with ==, which panics for value types that are not
	// comparable - supply an explicit function for those.
	ValueEqual func(a, b V) bool
}

// DefaultOptions returns the default tree map options
func DefaultOptions[V any]() *Options[V] {
	return &Options[V]{}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// New creates a new AVL tree map for naturally ordered keys with the
// specified options (optional).
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization. All methods of the returned map are safe for
// concurrent use.
func New[K cmp.Ordered, V any](opts *Options[V]) tree.Map[K, V] {
	return NewWithComparator[K, V](cmp.Compare[K], opts)
}

// NewWithComparator creates a new AVL tree map whose key order is defined by
// the given comparator. The comparator must define a total order and must be
// deterministic for the lifetime of the map.
//
// Thread-safety: see New.
func NewWithComparator[K, V any](compare tree.CompareFunc[K], opts *Options[V]) tree.Map[K, V] {
	if opts == nil {
		opts = DefaultOptions[V]()
	}
	eq := opts.ValueEqual
	if eq == nil {
		eq = func(a, b V) bool { return any(a) == any(b) }
	}
	return &treeImpl[K, V]{
		guard: xsync.NewRBMutex(),
		cmp:   compare,
		eq:    eq,
	}
}

// --------------------------------------------------------------------------
// Core Map Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates the entry for the given key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Set(key K, value V) {
	t.guard.Lock()
	defer t.guard.Unlock()

	// the constant combiner never fails
	root, inserted, _ := internal.Insert(t.root, key, t.cmp, func(V, bool) (V, error) {
		return value, nil
	})
	t.root = root
	if inserted {
		t.size++
	}
}

// Update atomically computes and stores the value for a key from the
// previously stored value. The returned bool reports whether a new key was
// inserted. If combine fails the tree and its size are left untouched: the
// engine only links a new node or replaces an existing value after the
// combine function has returned successfully, so a failure can never leave
// the tree partially rebalanced or partially linked.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// The combine function runs while the write lock is held and must not call
// back into this map (doing so deadlocks).
func (t *treeImpl[K, V]) Update(key K, combine tree.CombineFunc[V]) (bool, error) {
	if combine == nil {
		return false, tree.ErrNilCombine
	}

	t.guard.Lock()
	defer t.guard.Unlock()

	root, inserted, err := internal.Insert(t.root, key, t.cmp, combine)
	if err != nil {
		return false, errors.Wrap(err, "combine function failed")
	}
	t.root = root
	if inserted {
		t.size++
	}
	return inserted, nil
}

// SetAll inserts or updates all given entries under one write-lock
// acquisition. Later entries win for duplicate keys.
//
// Thread-safety: This method is thread-safe. Note that it deliberately does
// not call Set per entry - the guard is not reentrant.
func (t *treeImpl[K, V]) SetAll(entries []tree.Entry[K, V]) {
	t.guard.Lock()
	defer t.guard.Unlock()

	for _, e := range entries {
		value := e.Value
		root, inserted, _ := internal.Insert(t.root, e.Key, t.cmp, func(V, bool) (V, error) {
			return value, nil
		})
		t.root = root
		if inserted {
			t.size++
		}
	}
}

// Delete removes the entry for the given key. The bool reports whether the
// key was present, size is only decremented when a value was actually
// removed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Delete(key K) (V, bool) {
	t.guard.Lock()
	defer t.guard.Unlock()

	root, removed, found := internal.Delete(t.root, key, t.cmp)
	t.root = root
	if found {
		t.size--
	}
	return removed, found
}

// Clear resets the map to empty.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Clear() {
	t.guard.Lock()
	defer t.guard.Unlock()

	t.root = nil
	t.size = 0
}

// --------------------------------------------------------------------------
// Core Map Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns the value stored for the given key. O(height).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Get(key K) (V, bool) {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.Get(t.root, key, t.cmp)
}

// Has reports whether a key exists in the map. O(height).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Has(key K) bool {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	_, found := internal.Get(t.root, key, t.cmp)
	return found
}

// HasValue reports whether any entry stores the given value. This is a full
// O(n) scan, unlike key lookups.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) HasValue(value V) bool {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.ContainsValue(t.root, value, t.eq)
}

// Size returns the number of entries. O(1).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Size() int {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return t.size
}

// IsEmpty reports whether the map holds no entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) IsEmpty() bool {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return t.root == nil
}

// Height returns the cached height of the tree. O(1).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Height() int {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.HeightOf(t.root)
}

// --------------------------------------------------------------------------
// Snapshot Operations
// --------------------------------------------------------------------------

// Keys returns all keys in ascending order as a point-in-time copy.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Keys() []K {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.AppendKeys(t.root, make([]K, 0, t.size))
}

// Values returns all values in ascending key order as a point-in-time copy.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Values() []V {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.AppendValues(t.root, make([]V, 0, t.size))
}

// Entries returns all entries in ascending key order as a point-in-time copy.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Entries() []tree.Entry[K, V] {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	return internal.AppendEntries(t.root, make([]tree.Entry[K, V], 0, t.size))
}

// --------------------------------------------------------------------------
// Order-Statistic Operations
// --------------------------------------------------------------------------

// Max returns up to limit entries in descending key order, skipping the
// first offset. The traversal visits O(offset+limit+height) nodes, it never
// touches the rest of the tree.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Max(offset, limit int) ([]tree.Entry[K, V], error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}

	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	entries, _ := internal.MaxN(t.root, offset, limit, t.size)
	return entries, nil
}

// Min returns up to limit entries in ascending key order, skipping the
// first offset. The traversal visits O(offset+limit+height) nodes.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) Min(offset, limit int) ([]tree.Entry[K, V], error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}

	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	entries, _ := internal.MinN(t.root, offset, limit, t.size)
	return entries, nil
}

// checkPage validates pagination arguments before any traversal happens.
func checkPage(offset, limit int) error {
	if offset < 0 {
		return errors.Wrapf(tree.ErrNegativeOffset, "offset %d", offset)
	}
	if limit < 0 {
		return errors.Wrapf(tree.ErrNegativeLimit, "limit %d", limit)
	}
	return nil
}

// --------------------------------------------------------------------------
// Diagnostics
// --------------------------------------------------------------------------

// IsBalanced recomputes every subtree height from scratch and reports
// whether the balance invariant holds. O(n), for tests and debugging.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) IsBalanced() bool {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	_, balanced := internal.Check(t.root)
	return balanced
}

// String renders all keys in ascending order, comma separated. For
// debugging only, the format is not a stable contract.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *treeImpl[K, V]) String() string {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	keys := internal.AppendKeys(t.root, make([]K, 0, t.size))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, ",")
}

// --------------------------------------------------------------------------
// Map Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the tree, including a node depth
// distribution that describes how well balanced the tree currently is.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// Note that it walks the whole tree under the read lock.
func (t *treeImpl[K, V]) GetInfo() tree.TreeInfo {
	tok := t.guard.RLock()
	defer t.guard.RUnlock(tok)

	// collect the depth of every node and of every leaf
	histogram := util.NewDepthHistogram()
	internal.WalkNodes(t.root, 0, func(n *internal.Node[K, V], depth int) {
		histogram.AddNode(depth, n.Left == nil && n.Right == nil)
	})

	// Metadata for this specific tree implementation
	meta := &struct {
		MeanNodeDepth float64    `json:"mean_node_depth"`
		LeafDepths    util.Stats `json:"leaf_depths"`
		LevelFill     float64    `json:"level_fill"`
		Info          string     `json:"info"`
	}{
		MeanNodeDepth: histogram.MeanDepth(),
		LeafDepths:    histogram.LeafDepthStats(),
		LevelFill:     histogram.LevelFill(),
		Info:          "LevelFill compares the node count against a perfectly filled tree of the same height.",
	}

	// features
	supportedFeatures := []tree.Feature{
		tree.FeatureSet, tree.FeatureUpdate, tree.FeatureSetAll,
		tree.FeatureGet, tree.FeatureDelete,
		tree.FeatureHas, tree.FeatureHasValue,
		tree.FeatureSnapshot, tree.FeaturePaginate, tree.FeatureValidate,
	}

	return tree.TreeInfo{
		Size:              t.size,
		Height:            internal.HeightOf(t.root),
		TreeType:          tree.ImplAVL,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific tree map feature
func (t *treeImpl[K, V]) SupportsFeature(feature tree.Feature) bool {
	supportedFeatures := tree.FeatureSet |
		tree.FeatureUpdate |
		tree.FeatureSetAll |
		tree.FeatureGet |
		tree.FeatureDelete |
		tree.FeatureHas |
		tree.FeatureHasValue |
		tree.FeatureSnapshot |
		tree.FeaturePaginate |
		tree.FeatureValidate
	return supportedFeatures&feature == feature
}
