package store

import "errors"

var (
	// ErrStoreRead means the collection could not be read or decoded.
	ErrStoreRead = errors.New("error reading item store")
	// ErrStoreWrite means the updated collection could not be persisted.
	ErrStoreWrite = errors.New("error writing item store")
	// ErrCorruptStore means the collection decoded but is not an array.
	ErrCorruptStore = errors.New("item store is not an array")
	// ErrInvalidRequest means the removal id set was not collection-shaped.
	ErrInvalidRequest = errors.New("invalid request: expected an array of item ids")
	// ErrUnknownCategory means no category with that name is configured.
	ErrUnknownCategory = errors.New("unknown category")
)
