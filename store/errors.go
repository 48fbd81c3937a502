package store

import "errors"

var (
	// ErrNotFound indicates no entry exists for the given key.
	ErrNotFound = errors.New("store: entry not found")

	// ErrStoreUnavailable indicates the database could not be opened.
	ErrStoreUnavailable = errors.New("store: store unavailable")

	// ErrCorruptEntry indicates metadata exists but the content is absent or
	// unreadable. Callers treat this as a cache miss, not a fatal state.
	ErrCorruptEntry = errors.New("store: corrupt entry")

	// ErrEmptyKey indicates an empty document key was supplied.
	ErrEmptyKey = errors.New("store: key is empty")

	// ErrEmptyContent indicates an attempt to store empty content.
	ErrEmptyContent = errors.New("store: content is empty")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store: store is closed")

	// ErrSchemaTooNew indicates the database was written by a newer schema
	// than this build understands.
	ErrSchemaTooNew = errors.New("store: schema version is newer than supported")

	// ErrSealFailed indicates content could not be sealed for storage.
	ErrSealFailed = errors.New("store: seal failed")
)
