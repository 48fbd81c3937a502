package shelf

import "errors"

var (
	// ErrOffline indicates no document service is configured; only cached
	// documents are available.
	ErrOffline = errors.New("shelf: no document service configured")
)
