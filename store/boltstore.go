package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// SchemaVersion is the current on-disk schema version.
const SchemaVersion = 1

var (
	bucketFiles    = []byte("files")
	bucketMetadata = []byte("metadata")
	bucketSchema   = []byte("schema")

	schemaVersionKey = []byte("version")
)

// migrations maps a schema version to the buckets it introduces. Migration is
// strictly additive: opening a database recorded at an older version creates
// the missing buckets and bumps the recorded version. Buckets are never
// dropped.
var migrations = map[uint32][][]byte{
	1: {bucketFiles, bucketMetadata},
}

// Store is the persistent document cache, backed by a single bbolt database
// with two independent partitions: files (opaque payload bytes) and metadata
// (descriptive records). There is no transactional coupling across the two;
// callers that need both written issue two operations in a fail-safe order
// (content first, then metadata).
type Store struct {
	db     *bbolt.DB
	sealer *Sealer
}

// Option configures a Store at open time.
type Option func(*Store)

// WithSealer seals payloads in the files partition at rest. Metadata is
// stored in the clear so the key index stays cheap to rebuild.
func WithSealer(s *Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// Open opens or creates the bbolt database at dbPath and runs any pending
// forward migrations. The parent directory is created if it does not exist.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrStoreUnavailable, err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %w", ErrStoreUnavailable, err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &Store{db: db}
	for _, opt := range opts {
		opt(st)
	}
	return st, nil
}

// migrate brings the database schema up to SchemaVersion. Returns
// ErrSchemaTooNew if the database was written by a later build.
func migrate(db *bbolt.DB) error {
	return db.Update(func(tx *bbolt.Tx) error {
		sb, err := tx.CreateBucketIfNotExists(bucketSchema)
		if err != nil {
			return fmt.Errorf("%w: create schema bucket: %w", ErrStoreUnavailable, err)
		}

		var from uint32
		if raw := sb.Get(schemaVersionKey); len(raw) == 4 {
			from = binary.BigEndian.Uint32(raw)
		}
		if from > SchemaVersion {
			return fmt.Errorf("%w: on disk %d, supported %d", ErrSchemaTooNew, from, SchemaVersion)
		}

		for v := from + 1; v <= SchemaVersion; v++ {
			for _, name := range migrations[v] {
				if _, err := tx.CreateBucketIfNotExists(name); err != nil {
					return fmt.Errorf("%w: create bucket %q: %w", ErrStoreUnavailable, name, err)
				}
			}
		}

		if from != SchemaVersion {
			if err := sb.Put(schemaVersionKey, encodeVersion(SchemaVersion)); err != nil {
				return fmt.Errorf("%w: record schema version: %w", ErrStoreUnavailable, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Files returns the content partition.
func (s *Store) Files() *Partition {
	return &Partition{db: s.db, name: bucketFiles, sealer: s.sealer}
}

// Metadata returns the metadata partition.
func (s *Store) Metadata() *Partition {
	return &Partition{db: s.db, name: bucketMetadata}
}

// encodeVersion encodes a schema version as a 4-byte big-endian value.
func encodeVersion(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
