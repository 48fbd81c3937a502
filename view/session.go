// Package view opens documents for display through sessions whose
// transient references cannot outlive, or escape, the surface showing them.
package view

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// Reference is a transient, in-process handle over document bytes. It is
// never persisted and never exposed as a copyable URI; once revoked, every
// accessor fails. A Reference is exclusively owned by the surface its
// session was opened for and must not be shared across surfaces.
type Reference struct {
	mu      sync.Mutex
	data    []byte
	revoked bool
}

// Reader returns a reader over the referenced bytes, or ErrSessionClosed
// after revocation.
func (r *Reference) Reader() (io.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked {
		return nil, ErrSessionClosed
	}
	return bytes.NewReader(r.data), nil
}

// Len returns the number of referenced bytes, or 0 after revocation.
func (r *Reference) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked {
		return 0
	}
	return len(r.data)
}

// revoke releases the reference exactly once and zeroes the buffer so the
// payload does not linger in memory for the rest of the process lifetime.
func (r *Reference) revoke() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked {
		return
	}
	for i := range r.data {
		r.data[i] = 0
	}
	r.data = nil
	r.revoked = true
}

// Session pairs a document key with its transient reference for the
// lifetime of one viewing surface.
type Session struct {
	Key       string
	CreatedAt time.Time

	ref       *Reference
	closeOnce sync.Once
}

func newSession(key string, content []byte) *Session {
	return &Session{
		Key:       key,
		CreatedAt: time.Now(),
		ref:       &Reference{data: content},
	}
}

// Reference returns the session's transient reference.
func (s *Session) Reference() *Reference { return s.ref }

// Close revokes the transient reference. Idempotent: it must be called on
// every exit path of the owning surface, including abrupt teardown, and
// calling it again is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(s.ref.revoke)
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.ref.mu.Lock()
	defer s.ref.mu.Unlock()
	return s.ref.revoked
}

// Present renders the session on a surface. The capability set handed to
// the surface is always Restricted; export affordances are suppressed by
// construction, not by the surface's choice.
func (s *Session) Present(surface Surface) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	return surface.Render(s.ref, Restricted())
}
