package internal

import (
	"math"
	"testing"

	"github.com/ValentinKolb/tKV/lib/tree"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intCmp(a, b int) int { return a - b }

func constant(v int) tree.CombineFunc[int] {
	return func(int, bool) (int, error) { return v, nil }
}

// buildSequential inserts keys 0..n-1 ascending and returns the root.
func buildSequential(t testing.TB, n int) *Node[int, int] {
	var root *Node[int, int]
	for i := 0; i < n; i++ {
		var inserted bool
		var err error
		root, inserted, err = Insert(root, i, intCmp, constant(i))
		require.NoError(t, err)
		require.True(t, inserted)
	}
	return root
}

func TestRotationsKeepOrderAndHeights(t *testing.T) {
	// ascending inserts force left rotations on every second step
	root := buildSequential(t, 1024)

	height, balanced := Check(root)
	assert.True(t, balanced)
	assert.Equal(t, height, HeightOf(root), "cached height must match recomputed height")

	keys := AppendKeys(root, nil)
	require.Len(t, keys, 1024)
	for i, k := range keys {
		assert.Equal(t, i, k)
	}
}

func TestInsertDoubleRotations(t *testing.T) {
	// left-right case
	var root *Node[int, int]
	for _, k := range []int{5, 1, 3} {
		root, _, _ = Insert(root, k, intCmp, constant(k))
	}
	assert.Equal(t, 3, root.Key)
	assert.Equal(t, []int{1, 3, 5}, AppendKeys(root, nil))

	// right-left case
	root = nil
	for _, k := range []int{1, 5, 3} {
		root, _, _ = Insert(root, k, intCmp, constant(k))
	}
	assert.Equal(t, 3, root.Key)
	assert.Equal(t, []int{1, 3, 5}, AppendKeys(root, nil))

	_, balanced := Check(root)
	assert.True(t, balanced)
}

func TestInsertCombineErrorLeavesSubtreeUntouched(t *testing.T) {
	root := buildSequential(t, 64)
	heightBefore := HeightOf(root)
	keysBefore := AppendKeys(root, nil)

	boom := errors.New("boom")

	// error on a fresh key
	newRoot, inserted, err := Insert(root, 1000, intCmp, func(int, bool) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, inserted)
	assert.Same(t, root, newRoot)
	assert.Equal(t, heightBefore, HeightOf(newRoot))
	assert.Equal(t, keysBefore, AppendKeys(newRoot, nil))

	// error on an existing key keeps the old value
	newRoot, _, err = Insert(root, 10, intCmp, func(int, bool) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	value, found := Get(newRoot, 10, intCmp)
	require.True(t, found)
	assert.Equal(t, 10, value)
}

func TestDeleteSuccessorSplicing(t *testing.T) {
	// 3 has two children after these inserts, deleting it splices its
	// in-order successor (4) into its place
	var root *Node[int, int]
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		root, _, _ = Insert(root, k, intCmp, constant(k))
	}

	root, removed, found := Delete(root, 3, intCmp)
	require.True(t, found)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []int{1, 4, 5, 7, 8, 9}, AppendKeys(root, nil))

	_, balanced := Check(root)
	assert.True(t, balanced)

	// the same keys can still be found
	for _, k := range []int{1, 4, 5, 7, 8, 9} {
		_, found := Get(root, k, intCmp)
		assert.True(t, found, "key %d", k)
	}
}

func TestDeleteRebalances(t *testing.T) {
	root := buildSequential(t, 4096)

	// deleting a whole flank forces rebalancing on the way
	for k := 0; k < 3000; k++ {
		var found bool
		root, _, found = Delete(root, k, intCmp)
		require.True(t, found)

		if k%100 == 0 {
			height, balanced := Check(root)
			require.True(t, balanced)
			require.Equal(t, height, HeightOf(root))
		}
	}

	assert.Equal(t, 1096, len(AppendKeys(root, nil)))
}

func TestDeleteAbsentKeyIsNoOp(t *testing.T) {
	root := buildSequential(t, 64)

	newRoot, _, found := Delete(root, 1000, intCmp)
	assert.False(t, found)
	assert.Same(t, root, newRoot)
	assert.Equal(t, 64, len(AppendKeys(newRoot, nil)))
}

func TestPaginationOrder(t *testing.T) {
	root := buildSequential(t, 100)

	entries, _ := MaxN(root, 10, 5, 100)
	require.Len(t, entries, 5)
	for i, want := range []int{89, 88, 87, 86, 85} {
		assert.Equal(t, want, entries[i].Key)
	}

	entries, _ = MinN(root, 10, 5, 100)
	require.Len(t, entries, 5)
	for i, want := range []int{10, 11, 12, 13, 14} {
		assert.Equal(t, want, entries[i].Key)
	}
}

// Oversized limits mean "everything after offset". The walk appends into a
// size-capped buffer, so even limits near the int ceiling must neither
// over-allocate nor wrap the emission bound.
func TestPaginationOversizedLimit(t *testing.T) {
	root := buildSequential(t, 100)

	entries, _ := MinN(root, 0, math.MaxInt, 100)
	require.Len(t, entries, 100)
	assert.Equal(t, 0, entries[0].Key)
	assert.Equal(t, 99, entries[99].Key)

	// offset > 0 with a maximal limit would overflow a naive offset+limit
	entries, _ = MaxN(root, 10, math.MaxInt, 100)
	require.Len(t, entries, 90)
	assert.Equal(t, 89, entries[0].Key)
	assert.Equal(t, 0, entries[89].Key)
}

// The pagination walk must abandon the tree once the rank counter passes
// offset+limit: the number of visited nodes is bounded by
// offset+limit+height, never by the tree size. This holds even though the
// walk fully descends into the far flank before the first rank check fires
// on the way back up.
func TestPaginationVisitBound(t *testing.T) {
	const n = 128 * 1024
	root := buildSequential(t, n)
	height := HeightOf(root)

	for _, tc := range []struct{ offset, limit int }{
		{0, 1},
		{0, 10},
		{100, 10},
		{1000, 50},
	} {
		bound := tc.offset + tc.limit + height

		_, visited := MaxN(root, tc.offset, tc.limit, n)
		assert.LessOrEqual(t, visited, bound,
			"MaxN(%d,%d) visited %d nodes, tree has %d", tc.offset, tc.limit, visited, n)

		_, visited = MinN(root, tc.offset, tc.limit, n)
		assert.LessOrEqual(t, visited, bound,
			"MinN(%d,%d) visited %d nodes, tree has %d", tc.offset, tc.limit, visited, n)
	}

	// an unbounded page degenerates to a full traversal
	_, visited := MinN(root, 0, n, n)
	assert.Equal(t, n, visited)
}

func TestCheckDetectsImbalance(t *testing.T) {
	// hand-built path of three nodes, clearly not AVL
	root := &Node[int, int]{
		Key: 1, Height: 3,
		Right: &Node[int, int]{
			Key: 2, Height: 2,
			Right: &Node[int, int]{Key: 3, Height: 1},
		},
	}

	_, balanced := Check(root)
	assert.False(t, balanced)
}
