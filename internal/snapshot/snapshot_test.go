package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snap.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	_, path := openTemp(t)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	st, err := s.Record(ctx, "add", "body v1")
	require.NoError(t, err)
	assert.Equal(t, StatusNew, st)

	first, err := s.Get(ctx, "add")
	require.NoError(t, err)
	assert.Equal(t, "add", first.Name)
	assert.Equal(t, "body v1", first.Body)
	assert.Equal(t, Digest("body v1"), first.Digest)
	assert.Equal(t, int64(1), first.Seq)
	id, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	st, err = s.Record(ctx, "add", "body v1")
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, st)

	st, err = s.Record(ctx, "add", "body v2")
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, st)

	second, err := s.Get(ctx, "add")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "id is stable across changes")
	assert.Equal(t, "body v2", second.Body)
	assert.Equal(t, int64(2), second.Seq)
}

func TestRecordPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snap.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.Record(ctx, "max", "x")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	st, err := s2.Record(ctx, "max", "x")
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, st)
}

func TestGetNotFound(t *testing.T) {
	s, _ := openTemp(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	snaps, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Record(ctx, name, "body of "+name)
		require.NoError(t, err)
	}

	snaps, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "alpha", snaps[0].Name)
	assert.Equal(t, "mid", snaps[1].Name)
	assert.Equal(t, "zeta", snaps[2].Name)
	assert.Equal(t, int64(2), snaps[0].Seq)
}

func TestDigest(t *testing.T) {
	d := Digest("Cfg():")
	assert.Len(t, d, 64, "SHA-256 hex is 64 characters")
	assert.Equal(t, d, Digest("Cfg():"))
	assert.NotEqual(t, d, Digest("Cfg(): "))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "new", StatusNew.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "changed", StatusChanged.String())
	assert.Equal(t, "unknown", Status(9).String())
}
