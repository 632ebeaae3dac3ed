package testing

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/tKV/lib/tree"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TreeFactory is a function that creates a new instance of a tree.Map
// implementation under test
type TreeFactory func() tree.Map[int64, int64]

// RunTreeMapTests runs a comprehensive test suite for a tree.Map implementation.
func RunTreeMapTests(t *testing.T, name string, factory TreeFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Empty", func(t *testing.T) {
			testEmpty(t, factory())
		})

		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("UpdateCombineFailure", func(t *testing.T) {
			testUpdateCombineFailure(t, factory())
		})

		t.Run("SetAll", func(t *testing.T) {
			testSetAll(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has&HasValue", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Snapshots", func(t *testing.T) {
			testSnapshots(t, factory())
		})

		t.Run("Pagination", func(t *testing.T) {
			testPagination(t, factory())
		})

		t.Run("PaginationArguments", func(t *testing.T) {
			testPaginationArguments(t, factory())
		})

		t.Run("OrderedInsert", func(t *testing.T) {
			testOrderedInsert(t, factory())
		})

		t.Run("AntiOrderedInsert", func(t *testing.T) {
			testAntiOrderedInsert(t, factory())
		})

		t.Run("RandomInsertRemove", func(t *testing.T) {
			testRandomInsertRemove(t, factory())
		})

		t.Run("HeightBounds", func(t *testing.T) {
			testHeightBounds(t, factory())
		})

		t.Run("ConcurrentUpdates", func(t *testing.T) {
			testConcurrentUpdates(t, factory())
		})

		t.Run("ConcurrentReadersAndWriters", func(t *testing.T) {
			testConcurrentReadersAndWriters(t, factory())
		})

		t.Run("String", func(t *testing.T) {
			testString(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the map supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, m tree.Map[int64, int64], feature tree.Feature) {
	if !m.SupportsFeature(feature) {
		t.Skip()
	}
}

// fib returns the i-th Fibonacci number (fib(0)=0, fib(1)=1)
func fib(i int) int {
	a, b := 0, 1
	for ; i > 0; i-- {
		a, b = b, a+b
	}
	return a
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testEmpty(t *testing.T, m tree.Map[int64, int64]) {
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0, m.Height())
	assert.True(t, m.IsBalanced())

	_, found := m.Get(42)
	assert.False(t, found)

	_, found = m.Delete(42)
	assert.False(t, found)
	assert.Equal(t, 0, m.Size())
}

func testSetGet(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureGet)

	m.Set(1, 100)

	value, found := m.Get(1)
	require.True(t, found)
	assert.Equal(t, int64(100), value)

	// overwriting an existing key never changes the size
	m.Set(1, 200)
	value, found = m.Get(1)
	require.True(t, found)
	assert.Equal(t, int64(200), value)
	assert.Equal(t, 1, m.Size())

	// idempotent insert of the same pair
	m.Set(1, 200)
	assert.Equal(t, 1, m.Size())
	assert.True(t, m.IsBalanced())

	_, found = m.Get(2)
	assert.False(t, found)
}

func testUpdate(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureUpdate|tree.FeatureGet)

	// first update inserts
	inserted, err := m.Update(7, func(prev int64, loaded bool) (int64, error) {
		assert.False(t, loaded)
		assert.Equal(t, int64(0), prev)
		return 1, nil
	})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, 1, m.Size())

	// second update sees the previous value and replaces it
	inserted, err = m.Update(7, func(prev int64, loaded bool) (int64, error) {
		assert.True(t, loaded)
		assert.Equal(t, int64(1), prev)
		return prev + 1, nil
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1, m.Size())

	value, found := m.Get(7)
	require.True(t, found)
	assert.Equal(t, int64(2), value)

	// nil combine function is rejected up front
	_, err = m.Update(7, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, tree.ErrNilCombine)
}

func testUpdateCombineFailure(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureUpdate)

	for i := int64(0); i < 100; i++ {
		m.Set(i, i)
	}
	heightBefore := m.Height()
	keysBefore := m.Keys()

	boom := errors.New("boom")

	// failing combine on a new key: no node may be linked
	inserted, err := m.Update(1000, func(int64, bool) (int64, error) {
		return 0, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, inserted)
	assert.False(t, m.Has(1000))

	// failing combine on an existing key: the old value must survive
	_, err = m.Update(50, func(int64, bool) (int64, error) {
		return 0, boom
	})
	require.Error(t, err)
	value, found := m.Get(50)
	require.True(t, found)
	assert.Equal(t, int64(50), value)

	// the tree is structurally untouched either way
	assert.Equal(t, 100, m.Size())
	assert.Equal(t, heightBefore, m.Height())
	assert.Equal(t, keysBefore, m.Keys())
	assert.True(t, m.IsBalanced())
}

func testSetAll(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSetAll|tree.FeatureGet)

	entries := make([]tree.Entry[int64, int64], 0, 100)
	for i := int64(0); i < 100; i++ {
		entries = append(entries, tree.Entry[int64, int64]{Key: i, Value: i * 2})
	}
	// duplicate key, the later entry wins
	entries = append(entries, tree.Entry[int64, int64]{Key: 0, Value: -1})

	m.SetAll(entries)

	assert.Equal(t, 100, m.Size())
	assert.True(t, m.IsBalanced())

	value, found := m.Get(0)
	require.True(t, found)
	assert.Equal(t, int64(-1), value)

	value, found = m.Get(99)
	require.True(t, found)
	assert.Equal(t, int64(198), value)
}

func testDelete(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureDelete|tree.FeatureGet)

	// scenario from the delete design: two-child node with rebalance
	for _, k := range []int64{5, 3, 8, 1, 4, 7, 9} {
		m.Set(k, k)
	}

	removed, found := m.Delete(3)
	require.True(t, found)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, 6, m.Size())
	assert.True(t, m.IsBalanced())

	_, found = m.Get(3)
	assert.False(t, found)

	// deleting an absent key changes nothing
	sizeBefore := m.Size()
	heightBefore := m.Height()
	keysBefore := m.Keys()

	_, found = m.Delete(3)
	assert.False(t, found)
	assert.Equal(t, sizeBefore, m.Size())
	assert.Equal(t, heightBefore, m.Height())
	assert.Equal(t, keysBefore, m.Keys())

	// delete the rest, size reaches zero again
	for _, k := range []int64{5, 8, 1, 4, 7, 9} {
		removed, found = m.Delete(k)
		require.True(t, found)
		assert.Equal(t, k, removed)
		assert.True(t, m.IsBalanced())
	}
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Size())
}

func testHas(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureHas|tree.FeatureHasValue)

	m.Set(1, 10)
	m.Set(2, 20)

	assert.True(t, m.Has(1))
	assert.True(t, m.Has(2))
	assert.False(t, m.Has(3))

	assert.True(t, m.HasValue(10))
	assert.True(t, m.HasValue(20))
	assert.False(t, m.HasValue(30))
}

func testClear(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet)

	for i := int64(0); i < 1000; i++ {
		m.Set(i, i)
	}
	require.Equal(t, 1000, m.Size())

	m.Clear()

	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0, m.Height())
	assert.False(t, m.Has(0))

	// the map stays usable after a clear
	m.Set(1, 1)
	assert.Equal(t, 1, m.Size())
}

func testSnapshots(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureSnapshot)

	keys := []int64{42, 7, 19, 3, 99, 1, 56}
	for _, k := range keys {
		m.Set(k, k*10)
	}

	sorted := append([]int64(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	assert.Equal(t, sorted, m.Keys())

	values := m.Values()
	require.Len(t, values, len(keys))
	for i, k := range sorted {
		assert.Equal(t, k*10, values[i])
	}

	entries := m.Entries()
	require.Len(t, entries, len(keys))
	for i, k := range sorted {
		assert.Equal(t, k, entries[i].Key)
		assert.Equal(t, k*10, entries[i].Value)
	}

	// size always equals the length of a full in-order traversal
	assert.Equal(t, m.Size(), len(entries))

	// snapshots are copies, not live views
	snapshot := m.Keys()
	m.Set(1000, 1000)
	assert.Len(t, snapshot, len(keys))
}

func testPagination(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeaturePaginate)

	for _, k := range []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1} {
		m.Set(k, k)
	}

	// descending page: skip 10 and 9, take 7, 6, 5
	page, err := m.Max(2, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for i, want := range []int64{7, 6, 5} {
		assert.Equal(t, want, page[i].Key)
		assert.Equal(t, want, page[i].Value)
	}

	// ascending page
	page, err = m.Min(2, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for i, want := range []int64{3, 4, 5} {
		assert.Equal(t, want, page[i].Key)
	}

	// truncated page at the low end
	page, err = m.Max(8, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].Key)
	assert.Equal(t, int64(1), page[1].Key)

	// offset beyond the map yields an empty page
	page, err = m.Max(100, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	// a zero limit yields an empty page
	page, err = m.Min(0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	// a full page equals the reverse sorted key set
	page, err = m.Max(0, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	for i := range page {
		assert.Equal(t, int64(10-i), page[i].Key)
	}

	// a limit far beyond the map size means "everything", even at the
	// int ceiling
	page, err = m.Max(0, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, int64(10), page[0].Key)
	assert.Equal(t, int64(1), page[9].Key)

	page, err = m.Min(3, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, page, 7)
	assert.Equal(t, int64(4), page[0].Key)
}

func testPaginationArguments(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeaturePaginate)

	m.Set(1, 1)

	_, err := m.Max(-1, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, tree.ErrNegativeOffset)

	_, err = m.Min(0, -5)
	require.Error(t, err)
	assert.ErrorIs(t, err, tree.ErrNegativeLimit)
}

func testOrderedInsert(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureValidate)

	const n = 1024 * 1024
	for i := int64(0); i < n; i++ {
		m.Set(i, i)
	}

	assert.False(t, m.IsEmpty())
	assert.Equal(t, n, m.Size())
	assert.Equal(t, 21, m.Height())
	assert.True(t, m.IsBalanced())
}

func testAntiOrderedInsert(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureValidate)

	const n = 1024 * 1024
	for i := int64(n); i > 0; i-- {
		m.Set(i, i)
	}

	assert.False(t, m.IsEmpty())
	assert.Equal(t, n, m.Size())
	assert.Equal(t, 21, m.Height())
	assert.True(t, m.IsBalanced())
}

func testRandomInsertRemove(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureDelete|tree.FeatureValidate)

	rng := rand.New(rand.NewSource(1))

	contains := make(map[int64]int64)
	for i := 0; i < 64*1024; i++ {
		k := rng.Int63n(16 * 1024)
		v := rng.Int63()
		m.Set(k, v)
		contains[k] = v
	}

	require.Equal(t, len(contains), m.Size())
	require.True(t, m.IsBalanced())

	// every key returns the last value stored for it
	for k, v := range contains {
		value, found := m.Get(k)
		require.True(t, found)
		require.Equal(t, v, value)
	}

	// remove a random half, mixing in absent keys
	removedCount := 0
	for i := 0; i < 32*1024; i++ {
		k := rng.Int63n(32 * 1024)
		removed, found := m.Delete(k)
		if v, ok := contains[k]; ok {
			require.True(t, found)
			require.Equal(t, v, removed)
			delete(contains, k)
			removedCount++
		} else {
			require.False(t, found)
		}
	}

	require.True(t, removedCount > 0)
	require.Equal(t, len(contains), m.Size())
	require.True(t, m.IsBalanced())
	require.Equal(t, m.Size(), len(m.Keys()))
}

func testHeightBounds(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureValidate)

	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 64*1024; i++ {
		m.Set(rng.Int63(), rng.Int63())
		if i%1000 != 0 {
			continue
		}

		size, height := m.Size(), m.Height()

		// AVL height bounds: height <= 1.44*log2(size+2) and
		// size >= fib(height+2)-1
		maxHeight := 1.44 * math.Log2(float64(size)+2)
		require.LessOrEqual(t, float64(height), maxHeight)
		require.GreaterOrEqual(t, size, fib(height+2)-1)
	}

	require.True(t, m.IsBalanced())
}

func testConcurrentUpdates(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureUpdate|tree.FeatureGet)

	const (
		goroutines = 16
		increments = 2000
		key        = int64(1)
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				_, err := m.Update(key, func(prev int64, _ bool) (int64, error) {
					return prev + 1, nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// no lost updates: every increment ran under the write lock
	value, found := m.Get(key)
	require.True(t, found)
	assert.Equal(t, int64(goroutines*increments), value)
}

func testConcurrentReadersAndWriters(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet|tree.FeatureDelete|tree.FeaturePaginate|tree.FeatureValidate)

	const (
		writers = 4
		readers = 8
		ops     = 3000
	)

	var wg sync.WaitGroup
	wg.Add(writers + readers)

	for w := 0; w < writers; w++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < ops; i++ {
				k := rng.Int63n(1024)
				if rng.Intn(4) == 0 {
					m.Delete(k)
				} else {
					m.Set(k, k)
				}
			}
		}(int64(w))
	}

	for r := 0; r < readers; r++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < ops; i++ {
				switch rng.Intn(4) {
				case 0:
					m.Get(rng.Int63n(1024))
				case 1:
					if _, err := m.Max(int(rng.Int63n(16)), 8); err != nil {
						t.Error(err)
						return
					}
				case 2:
					// a reader must always observe a balanced tree
					if !m.IsBalanced() {
						t.Error("observed an unbalanced tree")
						return
					}
				case 3:
					keys := m.Keys()
					if !sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }) {
						t.Error("observed an unsorted snapshot")
						return
					}
				}
			}
		}(int64(100 + r))
	}

	wg.Wait()

	assert.True(t, m.IsBalanced())
	assert.Equal(t, m.Size(), len(m.Keys()))
}

func testString(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet)

	assert.Equal(t, "", fmt.Sprintf("%v", m))

	for _, k := range []int64{2, 3, 1} {
		m.Set(k, k)
	}

	assert.Equal(t, "1,2,3", fmt.Sprintf("%v", m))
}

func testInfo(t *testing.T, m tree.Map[int64, int64]) {
	requireFeature(t, m, tree.FeatureSet)

	for i := int64(0); i < 1000; i++ {
		m.Set(i, i)
	}

	info := m.GetInfo()
	assert.Equal(t, 1000, info.Size)
	assert.Equal(t, m.Height(), info.Height)
	assert.NotEmpty(t, info.TreeType)
	assert.NotEmpty(t, info.SupportedFeatures)

	for _, f := range info.SupportedFeatures {
		assert.True(t, m.SupportsFeature(f), "advertised feature %s not supported", f)
	}
}
