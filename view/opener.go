package view

import (
	"context"
	"fmt"

	"github.com/shelfdocs/libshelf-go/download"
	"github.com/shelfdocs/libshelf-go/store"
)

// ContentFetcher retrieves only the payload bytes for a key. The remote
// document client satisfies this; the view path never persists what it
// fetches, matching the "view without owning a permanent copy" case.
type ContentFetcher interface {
	FetchContent(ctx context.Context, credential, key string) ([]byte, error)
}

// Opener resolves document bytes into viewing sessions. Cached content is
// read directly from the store; a missing or corrupt entry falls back to a
// dedicated protected fetch.
type Opener struct {
	mgr     *store.Manager
	creds   download.CredentialSource
	fetcher ContentFetcher
}

// NewOpener creates an Opener. fetcher may be nil, in which case only
// cached documents can be opened.
func NewOpener(mgr *store.Manager, creds download.CredentialSource, fetcher ContentFetcher) *Opener {
	return &Opener{mgr: mgr, creds: creds, fetcher: fetcher}
}

// Open resolves content for key and returns a viewing session owning its
// transient reference. The caller must Close the session when the surface
// that requested it goes away.
func (o *Opener) Open(ctx context.Context, key string) (*Session, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	content, err := o.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	return newSession(key, content), nil
}

// resolve reads cached content, treating a corrupt entry as a miss, and
// falls back to a protected fetch that does not persist its result.
func (o *Opener) resolve(ctx context.Context, key string) ([]byte, error) {
	st, err := o.mgr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}

	content, err := st.Files().Get(key)
	if err == nil {
		return content, nil
	}
	if !store.IsMiss(err) {
		return nil, fmt.Errorf("view: read cached content: %w", err)
	}

	if o.fetcher == nil {
		return nil, fmt.Errorf("%w: %q not cached and no fetcher configured", ErrUnavailable, key)
	}

	var token string
	if o.creds != nil {
		token, err = o.creds.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("view: %w", err)
		}
	}

	content, err = o.fetcher.FetchContent(ctx, token, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnavailable, key, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %q: empty content", ErrUnavailable, key)
	}
	return content, nil
}
