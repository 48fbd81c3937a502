package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Manager owns the lazy, memoized initialization of the process-wide Store.
// The first Get begins opening the database; every Get issued before that
// open completes joins the same in-flight open and receives its result. A
// failed open is not cached, so a later Get retries from scratch. A boolean
// "opening" flag would race here; sharing the in-flight result does not.
type Manager struct {
	path string
	opts []Option

	mu    sync.Mutex
	store *Store
	group singleflight.Group
}

// NewManager creates a Manager for the database at path. No I/O happens
// until the first Get.
func NewManager(path string, opts ...Option) *Manager {
	return &Manager{path: path, opts: opts}
}

// Get returns the shared store handle, opening it on first use. Safe for
// any number of concurrent callers. Cancelling ctx abandons the wait, not
// the open itself; a successful open is still installed for later callers.
func (m *Manager) Get(ctx context.Context) (*Store, error) {
	m.mu.Lock()
	if m.store != nil {
		st := m.store
		m.mu.Unlock()
		return st, nil
	}
	m.mu.Unlock()

	ch := m.group.DoChan("open", func() (interface{}, error) {
		st, err := Open(m.path, m.opts...)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.store = st
		m.mu.Unlock()
		return st, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Store), nil
	}
}

// Close releases the current handle, if any. The manager re-arms: the next
// Get opens the database again.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}
