package download

import "errors"

var (
	// ErrAuthRequired indicates no active credential is available. The host
	// recovers by prompting re-authentication and retrying.
	ErrAuthRequired = errors.New("download: authorization required")

	// ErrFetchFailed indicates the remote document service could not be
	// reached or returned an error. Not retried automatically.
	ErrFetchFailed = errors.New("download: fetch failed")

	// ErrEmptyKey indicates an empty document key was supplied.
	ErrEmptyKey = errors.New("download: key is empty")

	// ErrNilFetcher indicates no fetcher was supplied.
	ErrNilFetcher = errors.New("download: fetcher is nil")

	// ErrEmptyPayload indicates the fetcher returned no content.
	ErrEmptyPayload = errors.New("download: fetcher returned empty content")
)
