package store

import (
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

// Partition is one of the store's independent mappings (files or metadata).
// Every operation is atomic on its own; last-writer-wins, no merge semantics.
// Key ordering from ListKeys is an implementation detail and not meaningful.
type Partition struct {
	db     *bbolt.DB
	name   []byte
	sealer *Sealer
}

// Name returns the partition name.
func (p *Partition) Name() string { return string(p.name) }

// Put upserts value under key.
func (p *Partition) Put(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(value) == 0 {
		return ErrEmptyContent
	}

	if p.sealer != nil {
		sealed, err := p.sealer.Seal(key, value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSealFailed, err)
		}
		value = sealed
	}

	return p.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(p.name).Put([]byte(key), value); err != nil {
			return fmt.Errorf("store: put %s/%s: %w", p.name, key, err)
		}
		return nil
	})
}

// Get retrieves the value for key. Returns ErrNotFound if absent and
// ErrCorruptEntry if a sealed payload cannot be opened.
func (p *Partition) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var value []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(p.name).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction.
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.sealer != nil {
		opened, err := p.sealer.Open(key, value)
		if err != nil {
			return nil, fmt.Errorf("%w: unseal %s/%s: %w", ErrCorruptEntry, p.name, key, err)
		}
		value = opened
	}
	return value, nil
}

// Has reports whether an entry exists for key without reading its value.
func (p *Partition) Has(key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	var found bool
	err := p.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(p.name).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Delete removes the entry for key. Returns ErrNotFound if absent.
func (p *Partition) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	return p.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(p.name)
		if b.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("store: delete %s/%s: %w", p.name, key, err)
		}
		return nil
	})
}

// ListKeys returns all keys currently present in the partition.
func (p *Partition) ListKeys() ([]string, error) {
	var keys []string
	err := p.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(p.name).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list keys %s: %w", p.name, err)
	}
	return keys, nil
}

// SweepOrphans deletes content entries that have no metadata entry. Such
// entries appear when a process dies between the content and metadata writes
// of a download; they are harmless but unreclaimed until swept. This is an
// explicit administrative action, never run implicitly. Returns the number
// of entries removed.
func (s *Store) SweepOrphans() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		files := tx.Bucket(bucketFiles)
		meta := tx.Bucket(bucketMetadata)

		var orphans [][]byte
		if err := files.ForEach(func(k, _ []byte) error {
			if meta.Get(k) == nil {
				kc := make([]byte, len(k))
				copy(kc, k)
				orphans = append(orphans, kc)
			}
			return nil
		}); err != nil {
			return err
		}

		for _, k := range orphans {
			if err := files.Delete(k); err != nil {
				return fmt.Errorf("store: sweep %s: %w", k, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("store: sweep orphans: %w", err)
	}
	return removed, nil
}

// IsMiss reports whether err should be treated as a cache miss on the read
// path: either no entry exists or the entry is corrupt.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptEntry)
}
