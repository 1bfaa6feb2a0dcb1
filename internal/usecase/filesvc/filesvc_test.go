package filesvc

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/chunkxfer/internal/app/storagehttp"
	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/repo"
	"github.com/sir_venger/chunkxfer/internal/transport"
)

type staticAdapter struct{ ready []string }

func (a staticAdapter) Available(context.Context, []string) []string { return a.ready }

func newNode(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(storagehttp.New(t.TempDir()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newFiles(t *testing.T, storages ...string) (*Files, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	router := NewRouter(nil)
	router.Set(storages)
	return New(Deps{
		MetaStorage: store,
		Router:      router,
		Dialer:      transport.NewPool(transport.Options{}),
		ChunkSize:   8,
		Log:         zerolog.Nop(),
		TempDir:     t.TempDir(),
	}), store
}

func TestFiles_UploadDownload(t *testing.T) {
	node := newNode(t)
	svc, store := newFiles(t, node)
	ctx := context.Background()

	body := []byte("the quick brown fox jumps over the lazy dog")
	file, err := svc.Upload(ctx, UploadRequest{
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		FileName:    " fox.txt ",
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "fox.txt", file.Name)
	assert.Equal(t, node, file.Storage)
	assert.EqualValues(t, len(body), file.Size)
	assert.Equal(t, 6, file.TotalChunks)
	assert.EqualValues(t, 8, file.ChunkSize)

	stored, err := store.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file, stored)

	meta, err := svc.Meta(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, meta.ID)

	got, art, err := svc.Download(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
	assert.Equal(t, body, art.Data)
	assert.Equal(t, "fox.txt", art.FileName)
	assert.Equal(t, "text/plain", art.ContentType)
}

func TestFiles_UploadUnknownLengthAndChunkOverride(t *testing.T) {
	svc, _ := newFiles(t, newNode(t))

	file, err := svc.Upload(context.Background(), UploadRequest{
		Body:      strings.NewReader("abcdefghij"),
		Size:      -1,
		FileName:  "x",
		ChunkSize: 4,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, file.Size)
	assert.Equal(t, 3, file.TotalChunks)
}

func TestFiles_UploadRoundRobin(t *testing.T) {
	a, b := newNode(t), newNode(t)
	svc, _ := newFiles(t, a, b)

	var used []string
	for i := 0; i < 3; i++ {
		f, err := svc.Upload(context.Background(), UploadRequest{Body: strings.NewReader("data"), Size: 4, FileName: "d"})
		require.NoError(t, err)
		used = append(used, f.Storage)
	}
	assert.Equal(t, []string{a, b, a}, used)
}

func TestFiles_UploadErrors(t *testing.T) {
	svc, store := newFiles(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadRequest{Body: strings.NewReader("abc"), Size: 3})
	assert.ErrorIs(t, err, models.ErrNoStorage)

	svc, _ = newFiles(t, newNode(t))
	_, err = svc.Upload(ctx, UploadRequest{Body: strings.NewReader("abc"), Size: 5})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Upload(ctx, UploadRequest{Body: strings.NewReader("abc"), Size: 3, ChunkSize: -1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Upload(ctx, UploadRequest{Body: iotestErrReader{}, Size: -1})
	assert.Error(t, err)

	svc.Router.StorageAdapter = staticAdapter{}
	_, err = svc.Upload(ctx, UploadRequest{Body: strings.NewReader("abc"), Size: 3})
	assert.ErrorIs(t, err, models.ErrNoStorage)

	_, err = store.Get(ctx, "anything")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFiles_DownloadUnknown(t *testing.T) {
	svc, _ := newFiles(t, newNode(t))
	_, _, err := svc.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFiles_AddStorages(t *testing.T) {
	svc, _ := newFiles(t, "http://a")
	svc.AddStorages("http://a", " ", "http://b")
	assert.Equal(t, []string{"http://a", "http://b"}, svc.Storages())
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, errors.New("broken body") }
