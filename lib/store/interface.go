package store

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/tree"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// TreeFactory is a function type that creates a new tree map used by the store.
// This is used to abstract the creation of the tree from the store implementation.
type TreeFactory[K, V any] func() tree.Map[K, V]

// ISortedStore is the generic interface for interacting with an ordered
// key-value store. All operations return a typed error (nil on success),
// read operations additionally return the requested data.
type ISortedStore[K, V any] interface {
	// Set inserts or updates a key-value pair.
	Set(key K, value V) (err error)
	// Update atomically computes the value for a key from the previous one.
	// The bool reports whether a new key was inserted.
	Update(key K, combine tree.CombineFunc[V]) (inserted bool, err error)
	// SetAll inserts or updates all entries in one atomic batch.
	SetAll(entries []tree.Entry[K, V]) (err error)
	// Delete removes a key-value pair and returns the removed value.
	// Deleting an absent key is not an error, found is false then.
	Delete(key K) (removed V, found bool, err error)
	// Clear removes all entries.
	Clear() (err error)
	// Get returns the value for a key. The boolean return value indicates
	// whether a value for the key was found.
	Get(key K) (value V, loaded bool, err error)
	// Has returns whether a key exists in the store.
	Has(key K) (loaded bool, err error)
	// Size returns the number of stored entries.
	Size() (size int, err error)
	// Keys returns all keys in ascending order.
	Keys() (keys []K, err error)
	// Entries returns all entries in ascending key order.
	Entries() (entries []tree.Entry[K, V], err error)
	// Top returns up to limit entries with the largest keys, in descending
	// order, skipping the first offset.
	Top(offset, limit int) (entries []tree.Entry[K, V], err error)
	// Bottom returns up to limit entries with the smallest keys, in
	// ascending order, skipping the first offset.
	Bottom(offset, limit int) (entries []tree.Entry[K, V], err error)
	// GetTreeInfo returns metadata about the tree underlying the store.
	// It is not guaranteed that all fields are filled in!
	GetTreeInfo() (info tree.TreeInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	case RetCCombineFailed:
		errorCode = "CombineFailed"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("SortedStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the underlying tree.
	RetCInvalidOperation                    // 3: Invalid operation, e.g. negative pagination arguments.
	RetCCombineFailed                       // 4: A caller supplied combine function returned an error.
)
