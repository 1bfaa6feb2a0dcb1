package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/chunkxfer/internal/models"
)

func sampleFile(id string) models.File {
	return models.File{
		ID:          id,
		Name:        "report.pdf",
		ContentType: "application/pdf",
		Size:        2_500_000,
		TotalChunks: 3,
		ChunkSize:   1 << 20,
		Storage:     "http://storage-1:8081",
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "absent")
	assert.ErrorIs(t, err, models.ErrNotFound)

	f := sampleFile("f1")
	require.NoError(t, s.Save(ctx, f))

	got, err := s.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, f, got)

	f.Storage = "s3://bucket/docs"
	require.NoError(t, s.Save(ctx, f))
	got, err = s.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/docs", got.Storage)

	err = s.Save(ctx, models.File{ID: "  "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestBadgerStore_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleFile("keep")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Name)
}

func TestOpen_Dispatch(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, "badger://"+filepath.Join(t.TempDir(), "catalog"))
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "mysql://x")
	assert.Error(t, err)
}
