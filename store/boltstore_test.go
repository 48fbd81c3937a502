package store

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func tempStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "shelf.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_CreatesPartitions(t *testing.T) {
	st := tempStore(t)

	keys, err := st.Files().ListKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = st.Metadata().ListKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOpen_RecordsSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	err = db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketSchema).Get(schemaVersionKey)
		require.Len(t, raw, 4)
		assert.Equal(t, uint32(SchemaVersion), binary.BigEndian.Uint32(raw))
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_MigratesOlderSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.db")

	// Simulate a pre-versioned database: schema bucket exists but no
	// partitions were ever created.
	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSchema)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	// Migration is additive: both partitions now exist.
	_, err = st.Files().ListKeys()
	assert.NoError(t, err)
	_, err = st.Metadata().ListKeys()
	assert.NoError(t, err)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.db")

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		sb, err := tx.CreateBucketIfNotExists(bucketSchema)
		if err != nil {
			return err
		}
		return sb.Put(schemaVersionKey, encodeVersion(SchemaVersion+1))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestPartition_PutGetRoundTrip(t *testing.T) {
	st := tempStore(t)

	content := []byte{1, 2, 3}
	require.NoError(t, st.Files().Put("doc-42", content))

	got, err := st.Files().Get("doc-42")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPartition_GetMissing(t *testing.T) {
	st := tempStore(t)

	_, err := st.Files().Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartition_LastWriterWins(t *testing.T) {
	st := tempStore(t)

	require.NoError(t, st.Files().Put("doc-7", []byte("first")))
	require.NoError(t, st.Files().Put("doc-7", []byte("second")))

	got, err := st.Files().Get("doc-7")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestPartition_Validation(t *testing.T) {
	st := tempStore(t)

	assert.ErrorIs(t, st.Files().Put("", []byte("x")), ErrEmptyKey)
	assert.ErrorIs(t, st.Files().Put("k", nil), ErrEmptyContent)

	_, err := st.Files().Get("")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestPartition_HasAndDelete(t *testing.T) {
	st := tempStore(t)

	found, err := st.Files().Has("doc-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, st.Files().Put("doc-1", []byte("x")))

	found, err = st.Files().Has("doc-1")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, st.Files().Delete("doc-1"))
	assert.ErrorIs(t, st.Files().Delete("doc-1"), ErrNotFound)
}

func TestPartition_Independence(t *testing.T) {
	st := tempStore(t)

	require.NoError(t, st.Files().Put("doc-1", []byte("payload")))

	// Content without metadata: the key is not "downloaded".
	found, err := st.Metadata().Has("doc-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPartition_ListKeys(t *testing.T) {
	st := tempStore(t)

	require.NoError(t, st.Metadata().Put("b", []byte("{}")))
	require.NoError(t, st.Metadata().Put("a", []byte("{}")))
	require.NoError(t, st.Metadata().Put("c", []byte("{}")))

	keys, err := st.Metadata().ListKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestItemMeta_RoundTrip(t *testing.T) {
	st := tempStore(t)

	meta := &ItemMeta{
		Title:             "Algebra Notes",
		TotalPages:        12,
		SourceResourceKey: "res-9",
		Extra:             map[string]string{"term": "fall"},
	}
	require.NoError(t, st.PutItem("doc-42", meta))

	got, err := st.GetItem("doc-42")
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

func TestGetItem_CorruptRecord(t *testing.T) {
	st := tempStore(t)

	require.NoError(t, st.Metadata().Put("doc-1", []byte("not json")))

	_, err := st.GetItem("doc-1")
	assert.ErrorIs(t, err, ErrCorruptEntry)
	assert.True(t, IsMiss(err))
}

func TestSweepOrphans(t *testing.T) {
	st := tempStore(t)

	// doc-1 fully downloaded, doc-2 orphaned (content only).
	require.NoError(t, st.Files().Put("doc-1", []byte("a")))
	require.NoError(t, st.PutItem("doc-1", &ItemMeta{Title: "one"}))
	require.NoError(t, st.Files().Put("doc-2", []byte("b")))

	removed, err := st.SweepOrphans()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = st.Files().Get("doc-2")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := st.Files().Get("doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Files().Put("doc-42", []byte{1, 2, 3}))
	require.NoError(t, st.PutItem("doc-42", &ItemMeta{Title: "Algebra Notes"}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Files().Get("doc-42")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	meta, err := st.GetItem("doc-42")
	require.NoError(t, err)
	assert.Equal(t, "Algebra Notes", meta.Title)
}
