// Package index maintains a queryable snapshot of downloaded document keys.
//
// The index is pull-based: callers refresh it after any write they care
// about observing (typically right after a successful download) and read
// against the last snapshot. Staleness between refreshes is an accepted
// trade-off; nothing here subscribes to store changes.
package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfdocs/libshelf-go/store"
)

// KeyIndex answers "has this key already been downloaded" without loading
// payload bytes. A key counts as downloaded if and only if it has a
// metadata entry.
type KeyIndex struct {
	mgr *store.Manager

	mu   sync.RWMutex
	snap Snapshot // swapped wholesale on refresh, never mutated in place
}

// Snapshot is an immutable set of keys materialized at one point in time.
type Snapshot map[string]struct{}

// Has reports whether key is present in the snapshot.
func (s Snapshot) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// New creates a KeyIndex over the given store manager. The index starts
// empty; call Refresh before the first read.
func New(mgr *store.Manager) *KeyIndex {
	return &KeyIndex{mgr: mgr, snap: Snapshot{}}
}

// Refresh recomputes the snapshot from the metadata partition and returns it.
func (ix *KeyIndex) Refresh(ctx context.Context) (Snapshot, error) {
	st, err := ix.mgr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: refresh: %w", err)
	}
	keys, err := st.Metadata().ListKeys()
	if err != nil {
		return nil, fmt.Errorf("index: refresh: %w", err)
	}

	snap := make(Snapshot, len(keys))
	for _, k := range keys {
		snap[k] = struct{}{}
	}

	ix.swap(snap)
	return snap, nil
}

// Has reports whether key was present at the last refresh.
func (ix *KeyIndex) Has(key string) bool {
	return ix.current().Has(key)
}

// Keys returns the keys of the last snapshot in no particular order.
func (ix *KeyIndex) Keys() []string {
	snap := ix.current()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of keys in the last snapshot.
func (ix *KeyIndex) Len() int { return len(ix.current()) }

func (ix *KeyIndex) current() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.snap
}

func (ix *KeyIndex) swap(snap Snapshot) {
	ix.mu.Lock()
	ix.snap = snap
	ix.mu.Unlock()
}
