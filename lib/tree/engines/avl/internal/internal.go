package internal

import (
	"math"

	"github.com/ValentinKolb/tKV/lib/tree"
)

// --------------------------------------------------------------------------
// Node Type (one tree cell)
// --------------------------------------------------------------------------

// Node is a single cell of the AVL tree. It owns its left and right subtrees
// exclusively: a node is reachable from exactly one parent slot (or is the
// root), so every child assignment below is an ownership transfer and the
// tree can never contain aliases or cycles.
type Node[K, V any] struct {
	Key    K
	Value  V
	Height int // cached subtree height, 1 for a leaf
	Left   *Node[K, V]
	Right  *Node[K, V]
}

// HeightOf returns the cached height of a subtree, 0 for an absent subtree.
func HeightOf[K, V any](n *Node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.Height
}

// balanceOf returns the balance factor height(left) - height(right).
func balanceOf[K, V any](n *Node[K, V]) int {
	if n == nil {
		return 0
	}
	return HeightOf(n.Left) - HeightOf(n.Right)
}

// reheight recomputes the cached height of n from its children.
func reheight[K, V any](n *Node[K, V]) {
	n.Height = 1 + max(HeightOf(n.Left), HeightOf(n.Right))
}

// --------------------------------------------------------------------------
// Rotations
// --------------------------------------------------------------------------

// rotateRight makes the left child the new subtree root. Only the two nodes
// involved change height, the children keep their cached heights. O(1).
func rotateRight[K, V any](y *Node[K, V]) *Node[K, V] {
	x := y.Left
	t2 := x.Right

	x.Right = y
	y.Left = t2

	reheight(y)
	reheight(x)

	return x
}

// rotateLeft makes the right child the new subtree root. O(1).
func rotateLeft[K, V any](x *Node[K, V]) *Node[K, V] {
	y := x.Right
	t2 := y.Left

	y.Left = x
	x.Right = t2

	reheight(x)
	reheight(y)

	return y
}

// --------------------------------------------------------------------------
// Insert / Update
// --------------------------------------------------------------------------

// Insert descends from n to the slot for key and stores combine(prev) there.
// It returns the possibly restructured subtree root and whether a new node
// was created (false if an existing value was replaced).
//
// If combine fails no node is linked and no value is overwritten: the value
// is computed before the new node is created respectively before the old
// value is replaced, so an error leaves the subtree untouched all the way up.
//
// After a structural insertion the height of every node on the path back up
// is recomputed and at most one of the four classic rebalancing cases is
// applied. The case is selected by where the new key falls relative to the
// unbalanced node's child key.
func Insert[K, V any](n *Node[K, V], key K, cmp tree.CompareFunc[K], combine tree.CombineFunc[V]) (*Node[K, V], bool, error) {
	if n == nil {
		var prev V
		value, err := combine(prev, false)
		if err != nil {
			return nil, false, err
		}
		return &Node[K, V]{Key: key, Value: value, Height: 1}, true, nil
	}

	switch c := cmp(key, n.Key); {
	case c < 0:
		left, inserted, err := Insert(n.Left, key, cmp, combine)
		if err != nil {
			return n, false, err
		}
		n.Left = left
		if !inserted {
			return n, false, nil
		}
	case c > 0:
		right, inserted, err := Insert(n.Right, key, cmp, combine)
		if err != nil {
			return n, false, err
		}
		n.Right = right
		if !inserted {
			return n, false, nil
		}
	default:
		// key already present, replace the value in place. No node was
		// added so the heights above are unaffected and no rebalancing
		// is needed.
		value, err := combine(n.Value, true)
		if err != nil {
			return n, false, err
		}
		n.Value = value
		return n, false, nil
	}

	reheight(n)

	balance := balanceOf(n)
	switch {
	case balance > 1 && cmp(key, n.Left.Key) < 0:
		// left left
		return rotateRight(n), true, nil
	case balance < -1 && cmp(key, n.Right.Key) > 0:
		// right right
		return rotateLeft(n), true, nil
	case balance > 1 && cmp(key, n.Left.Key) > 0:
		// left right
		n.Left = rotateLeft(n.Left)
		return rotateRight(n), true, nil
	case balance < -1 && cmp(key, n.Right.Key) < 0:
		// right left
		n.Right = rotateRight(n.Right)
		return rotateLeft(n), true, nil
	}

	return n, true, nil
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

// minNode returns the leftmost node of a non-empty subtree.
func minNode[K, V any](n *Node[K, V]) *Node[K, V] {
	current := n
	for current.Left != nil {
		current = current.Left
	}
	return current
}

// Delete removes the entry for key from the subtree rooted at n and returns
// the possibly restructured subtree root, the removed value and whether the
// key was found. Deleting an absent key leaves the subtree untouched.
//
// A node with at most one child is spliced out directly. A node with two
// children receives the key and value of its in-order successor (the
// leftmost node of the right subtree), then the successor is deleted from
// the right subtree, which is guaranteed to hit the one-child case.
//
// Rebalancing on the way back up uses the balance factor of the taller
// child to pick the rotation case, there is no single "newly affected key"
// to compare against after a deletion.
func Delete[K, V any](n *Node[K, V], key K, cmp tree.CompareFunc[K]) (root *Node[K, V], removed V, found bool) {
	if n == nil {
		return nil, removed, false
	}

	switch c := cmp(key, n.Key); {
	case c < 0:
		n.Left, removed, found = Delete(n.Left, key, cmp)
	case c > 0:
		n.Right, removed, found = Delete(n.Right, key, cmp)
	default:
		removed, found = n.Value, true

		if n.Left == nil || n.Right == nil {
			// at most one child, splice this node out
			child := n.Left
			if child == nil {
				child = n.Right
			}
			n = child
		} else {
			// two children, overwrite with the in-order successor and
			// delete the successor from the right subtree
			succ := minNode(n.Right)
			n.Key = succ.Key
			n.Value = succ.Value
			n.Right, _, _ = Delete(n.Right, succ.Key, cmp)
		}
	}

	if n == nil || !found {
		return n, removed, found
	}

	reheight(n)

	balance := balanceOf(n)
	switch {
	case balance > 1 && balanceOf(n.Left) >= 0:
		return rotateRight(n), removed, found
	case balance > 1 && balanceOf(n.Left) < 0:
		n.Left = rotateLeft(n.Left)
		return rotateRight(n), removed, found
	case balance < -1 && balanceOf(n.Right) <= 0:
		return rotateLeft(n), removed, found
	case balance < -1 && balanceOf(n.Right) > 0:
		n.Right = rotateRight(n.Right)
		return rotateLeft(n), removed, found
	}

	return n, removed, found
}

// --------------------------------------------------------------------------
// Lookups
// --------------------------------------------------------------------------

// Get descends from n by key comparison. O(height).
func Get[K, V any](n *Node[K, V], key K, cmp tree.CompareFunc[K]) (value V, found bool) {
	for n != nil {
		switch c := cmp(key, n.Key); {
		case c < 0:
			n = n.Left
		case c > 0:
			n = n.Right
		default:
			return n.Value, true
		}
	}
	return value, false
}

// ContainsValue scans the whole subtree for a matching value. Unlike key
// lookups this is O(n).
func ContainsValue[K, V any](n *Node[K, V], value V, eq func(a, b V) bool) bool {
	if n == nil {
		return false
	}
	return eq(n.Value, value) ||
		ContainsValue(n.Left, value, eq) ||
		ContainsValue(n.Right, value, eq)
}

// --------------------------------------------------------------------------
// Order-Statistic Pagination
// --------------------------------------------------------------------------

// pager carries the state of one bounded pagination walk. The rank counter
// is 1-based and incremented once per node visited for emission; a node is
// emitted iff offset < rank <= bound, where bound is offset+limit saturated
// at math.MaxInt so that an oversized limit means "everything after offset".
type pager[K, V any] struct {
	offset int
	bound  int
	rank   int
	out    []tree.Entry[K, V]
}

func newPager[K, V any](offset, limit, size int) *pager[K, V] {
	bound := offset + limit
	if bound < offset {
		bound = math.MaxInt
	}
	// size caps the preallocation, the walk can never emit more entries
	// than the tree holds
	return &pager[K, V]{
		offset: offset,
		bound:  bound,
		out:    make([]tree.Entry[K, V], 0, min(limit, size)),
	}
}

// MaxN walks the subtree in reverse-in-order (descending keys) and collects
// up to limit entries after skipping the first offset. size must be the node
// count of the subtree. The second return value is the number of nodes
// visited, which is bounded by offset+limit+height rather than the subtree
// size: once the rank counter passes offset+limit every pending node
// abandons its not yet visited near-side subtree immediately.
func MaxN[K, V any](n *Node[K, V], offset, limit, size int) ([]tree.Entry[K, V], int) {
	p := newPager[K, V](offset, limit, size)
	p.maxN(n)
	return p.out, p.rank
}

// MinN is the ascending (in-order) counterpart of MaxN.
func MinN[K, V any](n *Node[K, V], offset, limit, size int) ([]tree.Entry[K, V], int) {
	p := newPager[K, V](offset, limit, size)
	p.minN(n)
	return p.out, p.rank
}

func (p *pager[K, V]) maxN(n *Node[K, V]) {
	if n == nil {
		return
	}
	if n.Right != nil {
		p.maxN(n.Right)
	}
	p.rank++
	if p.rank > p.bound {
		return
	}
	if p.rank > p.offset {
		p.out = append(p.out, tree.Entry[K, V]{Key: n.Key, Value: n.Value})
	}
	if n.Left != nil {
		p.maxN(n.Left)
	}
}

func (p *pager[K, V]) minN(n *Node[K, V]) {
	if n == nil {
		return
	}
	if n.Left != nil {
		p.minN(n.Left)
	}
	p.rank++
	if p.rank > p.bound {
		return
	}
	if p.rank > p.offset {
		p.out = append(p.out, tree.Entry[K, V]{Key: n.Key, Value: n.Value})
	}
	if n.Right != nil {
		p.minN(n.Right)
	}
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// AppendKeys appends all keys of the subtree to out in ascending order.
func AppendKeys[K, V any](n *Node[K, V], out []K) []K {
	if n == nil {
		return out
	}
	out = AppendKeys(n.Left, out)
	out = append(out, n.Key)
	return AppendKeys(n.Right, out)
}

// AppendValues appends all values of the subtree to out in ascending key order.
func AppendValues[K, V any](n *Node[K, V], out []V) []V {
	if n == nil {
		return out
	}
	out = AppendValues(n.Left, out)
	out = append(out, n.Value)
	return AppendValues(n.Right, out)
}

// AppendEntries appends all entries of the subtree to out in ascending key order.
func AppendEntries[K, V any](n *Node[K, V], out []tree.Entry[K, V]) []tree.Entry[K, V] {
	if n == nil {
		return out
	}
	out = AppendEntries(n.Left, out)
	out = append(out, tree.Entry[K, V]{Key: n.Key, Value: n.Value})
	return AppendEntries(n.Right, out)
}

// WalkNodes calls fn for every node of the subtree with its depth below the
// root (the root has depth 0). Used for diagnostics.
func WalkNodes[K, V any](n *Node[K, V], depth int, fn func(n *Node[K, V], depth int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	WalkNodes(n.Left, depth+1, fn)
	WalkNodes(n.Right, depth+1, fn)
}

// --------------------------------------------------------------------------
// Balance Validation
// --------------------------------------------------------------------------

// Check recomputes the height of every subtree from scratch, ignoring the
// cached values, and reports whether the balance invariant holds everywhere.
// The recomputed height is returned alongside. O(n), diagnostic use only.
func Check[K, V any](n *Node[K, V]) (height int, balanced bool) {
	if n == nil {
		return 0, true
	}
	lh, ok := Check(n.Left)
	if !ok {
		return 0, false
	}
	rh, ok := Check(n.Right)
	if !ok {
		return 0, false
	}
	if lh-rh > 1 || rh-lh > 1 {
		return 0, false
	}
	return max(lh, rh) + 1, true
}
