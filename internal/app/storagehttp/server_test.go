package storagehttp

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

func newTestNode(t *testing.T) (string, *httptest.Server) {
	t.Helper()
	root := t.TempDir()
	srv := httptest.NewServer(New(root))
	t.Cleanup(srv.Close)
	return root, srv
}

func putChunk(t *testing.T, base, id string, idx, total int, data []byte, sha string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, chunkproto.ChunkURL(base, id, idx), bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set(chunkproto.HeaderTotalChunks, strconv.Itoa(total))
	if sha != "" {
		req.Header.Set(chunkproto.HeaderChecksum, sha)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func finalizeTransfer(t *testing.T, base, id string, body chunkproto.FinalizeBody) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(chunkproto.FinalizeURL(base, id), "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func shaHex(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func TestChunkPutFetchInspect(t *testing.T) {
	_, srv := newTestNode(t)
	data := []byte("hello chunk")

	resp := putChunk(t, srv.URL, "t1", 0, 2, data, shaHex(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got, err := http.Get(chunkproto.ChunkURL(srv.URL, "t1", 0))
	require.NoError(t, err)
	defer got.Body.Close()
	body, _ := io.ReadAll(got.Body)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, data, body)
	assert.Equal(t, shaHex(data), got.Header.Get(chunkproto.HeaderChecksum))

	head, err := http.Head(chunkproto.ChunkURL(srv.URL, "t1", 0))
	require.NoError(t, err)
	_ = head.Body.Close()
	assert.Equal(t, strconv.Itoa(len(data)), head.Header.Get(chunkproto.HeaderChunkSize))
	assert.Equal(t, "2", head.Header.Get(chunkproto.HeaderTotalChunks))

	missing, err := http.Get(chunkproto.ChunkURL(srv.URL, "t1", 1))
	require.NoError(t, err)
	_ = missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestChunkPutRejectsBadInput(t *testing.T) {
	_, srv := newTestNode(t)
	data := []byte("payload")

	assert.Equal(t, http.StatusConflict, putChunk(t, srv.URL, "t1", 0, 1, data, shaHex([]byte("other"))).StatusCode)
	assert.Equal(t, http.StatusBadRequest, putChunk(t, srv.URL, "t1", 3, 2, data, "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, putChunk(t, srv.URL, "t1", 0, 0, data, "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, putChunk(t, srv.URL, "bad$id", 0, 1, data, "").StatusCode)

	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "t2", 0, 2, data, "").StatusCode)
	assert.Equal(t, http.StatusConflict, putChunk(t, srv.URL, "t2", 1, 3, data, "").StatusCode)
}

func TestFinalizeLifecycle(t *testing.T) {
	_, srv := newTestNode(t)
	a, b := []byte("aaaa"), []byte("bb")

	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "doc", 0, 2, a, "").StatusCode)

	body := chunkproto.FinalizeBody{FileName: "doc.txt", ContentType: "text/plain", TotalChunks: 2, Size: 6}
	assert.Equal(t, http.StatusConflict, finalizeTransfer(t, srv.URL, "doc", body).StatusCode)

	metaResp, err := http.Get(chunkproto.MetaURL(srv.URL, "doc"))
	require.NoError(t, err)
	_ = metaResp.Body.Close()
	assert.Equal(t, http.StatusConflict, metaResp.StatusCode)

	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "doc", 1, 2, b, "").StatusCode)
	assert.Equal(t, http.StatusConflict, finalizeTransfer(t, srv.URL, "doc", chunkproto.FinalizeBody{TotalChunks: 2, Size: 7}).StatusCode)
	require.Equal(t, http.StatusOK, finalizeTransfer(t, srv.URL, "doc", body).StatusCode)
	// Повторная финализация с теми же параметрами идемпотентна.
	require.Equal(t, http.StatusOK, finalizeTransfer(t, srv.URL, "doc", body).StatusCode)

	assert.Equal(t, http.StatusConflict, putChunk(t, srv.URL, "doc", 1, 2, b, "").StatusCode)

	metaResp, err = http.Get(chunkproto.MetaURL(srv.URL, "doc"))
	require.NoError(t, err)
	defer metaResp.Body.Close()
	require.Equal(t, http.StatusOK, metaResp.StatusCode)

	var meta chunkproto.MetaBody
	require.NoError(t, json.NewDecoder(metaResp.Body).Decode(&meta))
	require.NotNil(t, meta.TotalChunks)
	assert.Equal(t, 2, *meta.TotalChunks)
	assert.Equal(t, "doc.txt", meta.FileName)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.Equal(t, int64(6), meta.Size)
	assert.True(t, meta.Finalized)
}

func TestFinalizeEmptyTransfer(t *testing.T) {
	_, srv := newTestNode(t)

	assert.Equal(t, http.StatusNotFound, finalizeTransfer(t, srv.URL, "ghost", chunkproto.FinalizeBody{TotalChunks: 1, Size: 1}).StatusCode)
	require.Equal(t, http.StatusOK, finalizeTransfer(t, srv.URL, "empty", chunkproto.FinalizeBody{FileName: "empty.txt"}).StatusCode)

	resp, err := http.Get(chunkproto.MetaURL(srv.URL, "empty"))
	require.NoError(t, err)
	defer resp.Body.Close()

	var meta chunkproto.MetaBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	require.NotNil(t, meta.TotalChunks)
	assert.Equal(t, 0, *meta.TotalChunks)
	assert.Equal(t, "empty.txt", meta.FileName)
}

func TestMetaUnknownTransfer(t *testing.T) {
	_, srv := newTestNode(t)

	resp, err := http.Get(chunkproto.MetaURL(srv.URL, "nope"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSweepRemovesOnlyStaleUnfinalized(t *testing.T) {
	root, srv := newTestNode(t)

	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "orphan", 0, 3, []byte("x"), "").StatusCode)
	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "done", 0, 1, []byte("y"), "").StatusCode)
	require.Equal(t, http.StatusOK, finalizeTransfer(t, srv.URL, "done", chunkproto.FinalizeBody{TotalChunks: 1, Size: 1}).StatusCode)
	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "fresh", 0, 2, []byte("z"), "").StatusCode)

	old := time.Now().Add(-48 * time.Hour)
	for _, id := range []string{"orphan", "done"} {
		require.NoError(t, os.Chtimes(filepath.Join(root, id, metaFileName), old, old))
	}

	removed, err := sweepOnce(root, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(root, "orphan"))
	assert.True(t, os.IsNotExist(err))
	assert.DirExists(t, filepath.Join(root, "done"))
	assert.DirExists(t, filepath.Join(root, "fresh"))
}

func TestPeriodicGCSharesWriteLock(t *testing.T) {
	root := t.TempDir()
	node := NewServer(root)
	srv := httptest.NewServer(node.Handler())
	t.Cleanup(srv.Close)

	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "orphan", 0, 3, []byte("x"), "").StatusCode)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "orphan", metaFileName), old, old))

	// Пока лок записи занят, фоновый GC не трогает каталог.
	node.mu.Lock()
	stop := node.StartGC(24*time.Hour, 5*time.Millisecond)
	t.Cleanup(stop)
	time.Sleep(50 * time.Millisecond)
	assert.DirExists(t, filepath.Join(root, "orphan"))
	node.mu.Unlock()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "orphan"))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthCountsTransfers(t *testing.T) {
	_, srv := newTestNode(t)
	require.Equal(t, http.StatusCreated, putChunk(t, srv.URL, "a", 0, 1, []byte("12345"), "").StatusCode)

	resp, err := http.Get(srv.URL + chunkproto.HealthPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats healthStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.True(t, stats.OK)
	assert.Equal(t, 1, stats.Transfers)
	assert.GreaterOrEqual(t, stats.TotalBytes, int64(5))
}
