package view

import "errors"

var (
	// ErrSessionClosed indicates the session's transient reference was
	// already revoked.
	ErrSessionClosed = errors.New("view: session is closed")

	// ErrEmptyKey indicates an empty document key was supplied.
	ErrEmptyKey = errors.New("view: key is empty")

	// ErrUnavailable indicates the document is neither cached nor
	// fetchable for viewing.
	ErrUnavailable = errors.New("view: document unavailable")
)
