package sstore

import (
	"testing"

	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/tree"
	"github.com/ValentinKolb/tKV/lib/tree/engines/avl"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() store.ISortedStore[string, int] {
	return NewSortedStore(func() tree.Map[string, int] {
		return avl.New[string, int](nil)
	})
}

func TestStoreSetGetDelete(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))

	value, loaded, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, loaded)
	assert.Equal(t, 1, value)

	loaded, err = s.Has("b")
	require.NoError(t, err)
	assert.True(t, loaded)

	removed, found, err := s.Delete("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, removed)

	_, loaded, err = s.Get("a")
	require.NoError(t, err)
	assert.False(t, loaded)

	// deleting an absent key is not an error
	_, found, err = s.Delete("a")
	require.NoError(t, err)
	assert.False(t, found)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore()

	inserted, err := s.Update("counter", func(prev int, _ bool) (int, error) {
		return prev + 1, nil
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.Update("counter", func(prev int, _ bool) (int, error) {
		return prev + 1, nil
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	value, loaded, err := s.Get("counter")
	require.NoError(t, err)
	require.True(t, loaded)
	assert.Equal(t, 2, value)
}

func TestStoreUpdateErrors(t *testing.T) {
	s := newTestStore()

	// failed combine surfaces as a typed error, the store is unchanged
	_, err := s.Update("k", func(int, bool) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.RetCCombineFailed, storeErr.Code)
	assert.Contains(t, storeErr.Msg, "boom")

	loaded, err := s.Has("k")
	require.NoError(t, err)
	assert.False(t, loaded)

	// nil combine is an invalid operation, not a combine failure
	_, err = s.Update("k", nil)
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.RetCInvalidOperation, storeErr.Code)
}

func TestStoreSetAllAndSnapshots(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.SetAll([]tree.Entry[string, int]{
		{Key: "c", Value: 3},
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
	}))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, 1, entries[0].Value)

	require.NoError(t, s.Clear())
	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestStorePagination(t *testing.T) {
	s := newTestStore()

	for _, e := range []tree.Entry[string, int]{
		{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3},
		{Key: "d", Value: 4}, {Key: "e", Value: 5},
	} {
		require.NoError(t, s.Set(e.Key, e.Value))
	}

	top, err := s.Top(1, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "d", top[0].Key)
	assert.Equal(t, "c", top[1].Key)

	bottom, err := s.Bottom(0, 2)
	require.NoError(t, err)
	require.Len(t, bottom, 2)
	assert.Equal(t, "a", bottom[0].Key)
	assert.Equal(t, "b", bottom[1].Key)

	// invalid pagination arguments map to RetCInvalidOperation
	_, err = s.Top(-1, 2)
	require.Error(t, err)
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.RetCInvalidOperation, storeErr.Code)
}

func TestStoreTreeInfo(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.Set("a", 1))

	info, err := s.GetTreeInfo()
	require.NoError(t, err)
	assert.Equal(t, tree.ImplAVL, info.TreeType)
	assert.Equal(t, 1, info.Size)
	assert.Equal(t, 1, info.Height)
}
