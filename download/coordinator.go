// Package download orchestrates fetching a document and committing it to
// the local cache: authorize, fetch, write content, write metadata.
package download

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/shelfdocs/libshelf-go/store"
)

// Payload is what a Fetcher returns for one document key: the opaque
// content bytes and the caller-facing metadata record.
type Payload struct {
	Content []byte
	Meta    store.ItemMeta
}

// Fetcher retrieves a document from the remote service. Implementations
// receive the bearer credential acquired by the coordinator and must not
// persist anything themselves.
type Fetcher interface {
	FetchDocument(ctx context.Context, credential, key string) (*Payload, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, credential, key string) (*Payload, error)

// FetchDocument implements Fetcher.
func (f FetcherFunc) FetchDocument(ctx context.Context, credential, key string) (*Payload, error) {
	return f(ctx, credential, key)
}

// CredentialSource supplies the bearer credential used to authorize a
// fetch. It abstracts the external authentication collaborator; an empty
// session must surface as ErrAuthRequired.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialSource holding a fixed bearer token.
type StaticToken string

// Token implements CredentialSource. An empty token means no session.
func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrAuthRequired
	}
	return string(t), nil
}

// Coordinator downloads documents into the persistent store. Content is
// written strictly before metadata, so a key's metadata entry never
// overstates what is resident: a crash between the two writes leaves an
// orphaned content entry (reclaimable via store.SweepOrphans), never a
// dangling metadata entry. A failed fetch writes nothing.
//
// Concurrent Download calls for the same key coalesce into one underlying
// fetch whose result fans out to every waiter. Different keys proceed
// independently.
type Coordinator struct {
	mgr   *store.Manager
	creds CredentialSource
	group singleflight.Group
}

// NewCoordinator creates a Coordinator over the shared store manager.
func NewCoordinator(mgr *store.Manager, creds CredentialSource) *Coordinator {
	return &Coordinator{mgr: mgr, creds: creds}
}

// Download fetches the document for key and commits it to the cache. It
// does not refresh any key index; observing the new entry is the caller's
// concern. When several calls for one key are in flight, the first
// caller's fetch serves all of them; a waiter whose ctx ends abandons the
// wait without cancelling the shared fetch.
func (c *Coordinator) Download(ctx context.Context, key string, fetcher Fetcher) error {
	if key == "" {
		return ErrEmptyKey
	}
	if fetcher == nil {
		return ErrNilFetcher
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return nil, c.download(ctx, key, fetcher)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Coordinator) download(ctx context.Context, key string, fetcher Fetcher) error {
	if c.creds == nil {
		return fmt.Errorf("%w: no credential source configured", ErrAuthRequired)
	}
	token, err := c.creds.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}

	payload, err := fetcher.FetchDocument(ctx, token, key)
	if err != nil {
		if errors.Is(err, ErrFetchFailed) || errors.Is(err, ErrAuthRequired) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if payload == nil || len(payload.Content) == 0 {
		return ErrEmptyPayload
	}

	st, err := c.mgr.Get(ctx)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	// Content before metadata: the fail-safe direction is "not yet
	// downloaded", never a metadata entry with no content behind it.
	if err := st.Files().Put(key, payload.Content); err != nil {
		return fmt.Errorf("download: write content: %w", err)
	}
	if err := st.PutItem(key, &payload.Meta); err != nil {
		return fmt.Errorf("download: write metadata: %w", err)
	}
	return nil
}
