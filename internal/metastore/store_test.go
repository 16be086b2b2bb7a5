package metastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	updated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	err := s.Upsert(ctx, FileRecord{
		DocID:     "doc-1",
		Path:      "/home/user/notes/plan.md",
		UpdatedAt: updated,
		Preview:   "quarterly planning notes",
	})
	require.NoError(t, err)

	rec, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/notes/plan.md", rec.Path)
	assert.True(t, rec.UpdatedAt.Equal(updated))
	assert.Equal(t, "quarterly planning notes", rec.Preview)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, FileRecord{DocID: "doc-1", Path: "/old/path"}))
	require.NoError(t, s.Upsert(ctx, FileRecord{DocID: "doc-1", Path: "/new/path"}))

	rec, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "/new/path", rec.Path)
}

func TestUpsertRequiresDocID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Upsert(context.Background(), FileRecord{Path: "/p"}))
}

func TestUpsertDefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, s.Upsert(ctx, FileRecord{DocID: "doc-1", Path: "/p"}))

	rec, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, rec.UpdatedAt.After(before))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, FileRecord{DocID: "doc-1", Path: "/p"}))
	require.NoError(t, s.Delete(ctx, "doc-1"))

	_, err := s.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing record is a no-op.
	assert.NoError(t, s.Delete(ctx, "doc-1"))
}
