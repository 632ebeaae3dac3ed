package avl

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/tKV/lib/tree"
	treetesting "github.com/ValentinKolb/tKV/lib/tree/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomComparator(t *testing.T) {
	// reverse numeric order
	m := NewWithComparator[int, string](func(a, b int) int { return b - a }, nil)

	for _, k := range []int{1, 2, 3, 4, 5} {
		m.Set(k, strings.Repeat("x", k))
	}

	// "ascending" under the comparator means descending numerically
	assert.Equal(t, []int{5, 4, 3, 2, 1}, m.Keys())

	// Max follows the comparator, not the numeric order
	page, err := m.Max(0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 1, page[0].Key)
	assert.Equal(t, 2, page[1].Key)

	assert.True(t, m.IsBalanced())
}

func TestStringKeys(t *testing.T) {
	m := New[string, int](nil)

	for i, k := range []string{"pear", "apple", "cherry", "banana"} {
		m.Set(k, i)
	}

	assert.Equal(t, []string{"apple", "banana", "cherry", "pear"}, m.Keys())
	assert.Equal(t, "apple,banana,cherry,pear", m.String())

	v, found := m.Get("cherry")
	require.True(t, found)
	assert.Equal(t, 2, v)
}

func TestValueEqualOption(t *testing.T) {
	// slices are not comparable with ==, so HasValue needs an explicit equality
	opts := &Options[[]byte]{
		ValueEqual: func(a, b []byte) bool { return string(a) == string(b) },
	}
	m := New[int, []byte](opts)

	m.Set(1, []byte("one"))
	m.Set(2, []byte("two"))

	assert.True(t, m.HasValue([]byte("one")))
	assert.False(t, m.HasValue([]byte("three")))
}

func TestNilValueEquality(t *testing.T) {
	m := New[int, *int](nil)

	v := 7
	m.Set(1, &v)
	m.Set(2, nil)

	// nil values compare equal to nil, like any other value
	assert.True(t, m.HasValue(nil))
	assert.True(t, m.HasValue(&v))

	other := 7
	assert.False(t, m.HasValue(&other))
}

func TestInfoMetadata(t *testing.T) {
	m := New[int64, int64](nil)
	for i := int64(0); i < 1023; i++ {
		m.Set(i, i)
	}

	info := m.GetInfo()
	assert.Equal(t, tree.ImplAVL, info.TreeType)
	assert.Equal(t, 1023, info.Size)
	// 1023 sequential keys build a complete tree of height 10
	assert.Equal(t, 10, info.Height)
	assert.NotNil(t, info.Metadata)
}

func TestLatencyProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping latency profile in short mode")
	}

	reports := treetesting.RunLatencyProfile(func() tree.Map[int64, int64] {
		return New[int64, int64](nil)
	}, 10000, 2000)

	require.NotEmpty(t, reports)
	for _, r := range reports {
		assert.Equal(t, int64(2000), r.Count)
		t.Logf("%s", r)
	}
}
