package sstore

import (
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/tree"
	"github.com/pkg/errors"
)

type storeImpl[K, V any] struct {
	tree tree.Map[K, V]
}

// NewSortedStore creates a new sorted store instance on top of the tree map
// produced by the factory. The store adds feature gating, the typed error
// system of the store package and operation metrics, the concurrency
// guarantees are those of the underlying tree map.
func NewSortedStore[K, V any](factory store.TreeFactory[K, V]) store.ISortedStore[K, V] {
	return &storeImpl[K, V]{
		tree: factory(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl[K, V]) Set(key K, value V) error {
	if !s.tree.SupportsFeature(tree.FeatureSet) {
		return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
	}
	s.tree.Set(key, value)
	metricSet.Inc()
	return nil
}

func (s *storeImpl[K, V]) Update(key K, combine tree.CombineFunc[V]) (bool, error) {
	if !s.tree.SupportsFeature(tree.FeatureUpdate) {
		return false, store.NewError(store.RetCUnsupportedOperation, "Update operation is not supported")
	}
	inserted, err := s.tree.Update(key, combine)
	if err != nil {
		if errors.Is(err, tree.ErrNilCombine) {
			return false, store.NewError(store.RetCInvalidOperation, err.Error())
		}
		return false, store.NewError(store.RetCCombineFailed, err.Error())
	}
	metricUpdate.Inc()
	return inserted, nil
}

func (s *storeImpl[K, V]) SetAll(entries []tree.Entry[K, V]) error {
	if !s.tree.SupportsFeature(tree.FeatureSetAll) {
		return store.NewError(store.RetCUnsupportedOperation, "SetAll operation is not supported")
	}
	s.tree.SetAll(entries)
	metricSet.Add(len(entries))
	return nil
}

func (s *storeImpl[K, V]) Delete(key K) (V, bool, error) {
	if !s.tree.SupportsFeature(tree.FeatureDelete) {
		var zero V
		return zero, false, store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	removed, found := s.tree.Delete(key)
	metricDelete.Inc()
	return removed, found, nil
}

func (s *storeImpl[K, V]) Clear() error {
	s.tree.Clear()
	metricClear.Inc()
	return nil
}

func (s *storeImpl[K, V]) Get(key K) (V, bool, error) {
	if !s.tree.SupportsFeature(tree.FeatureGet) {
		var zero V
		return zero, false, store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}
	value, loaded := s.tree.Get(key)
	metricGet.Inc()
	return value, loaded, nil
}

func (s *storeImpl[K, V]) Has(key K) (bool, error) {
	if !s.tree.SupportsFeature(tree.FeatureHas) {
		return false, store.NewError(store.RetCUnsupportedOperation, "Has operation is not supported")
	}
	metricGet.Inc()
	return s.tree.Has(key), nil
}

func (s *storeImpl[K, V]) Size() (int, error) {
	return s.tree.Size(), nil
}

func (s *storeImpl[K, V]) Keys() ([]K, error) {
	if !s.tree.SupportsFeature(tree.FeatureSnapshot) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Keys operation is not supported")
	}
	metricSnapshot.Inc()
	return s.tree.Keys(), nil
}

func (s *storeImpl[K, V]) Entries() ([]tree.Entry[K, V], error) {
	if !s.tree.SupportsFeature(tree.FeatureSnapshot) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Entries operation is not supported")
	}
	metricSnapshot.Inc()
	return s.tree.Entries(), nil
}

func (s *storeImpl[K, V]) Top(offset, limit int) ([]tree.Entry[K, V], error) {
	if !s.tree.SupportsFeature(tree.FeaturePaginate) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Top operation is not supported")
	}
	entries, err := s.tree.Max(offset, limit)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidOperation, err.Error())
	}
	metricPage.Inc()
	return entries, nil
}

func (s *storeImpl[K, V]) Bottom(offset, limit int) ([]tree.Entry[K, V], error) {
	if !s.tree.SupportsFeature(tree.FeaturePaginate) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Bottom operation is not supported")
	}
	entries, err := s.tree.Min(offset, limit)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidOperation, err.Error())
	}
	metricPage.Inc()
	return entries, nil
}

func (s *storeImpl[K, V]) GetTreeInfo() (tree.TreeInfo, error) {
	return s.tree.GetInfo(), nil
}
