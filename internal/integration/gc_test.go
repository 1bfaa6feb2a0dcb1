package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/app/storagehttp"
	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
	"github.com/sir_venger/chunkxfer/pkg/chunkclient"
)

// failingFinalize пропускает чанки на узел, но роняет финализацию,
// оставляя на диске осиротевшую передачу.
type failingFinalize struct {
	*chunkclient.Client
}

func (failingFinalize) Finalize(context.Context, models.FinalizeRequest) error {
	return errors.New("gateway crashed")
}

func Test_StorageGC_RemovesOrphansOfFailedUploads(t *testing.T) {
	root := t.TempDir()
	s := httptest.NewServer(storagehttp.New(root))
	t.Cleanup(s.Close)

	cli := chunkclient.New(s.URL, chunkclient.Config{})
	ids := []string{"orphan", "kept"}
	next := 0
	newID := func() string { id := ids[next]; next++; return id }

	broken := transfer.New(transfer.Deps{Transport: failingFinalize{cli}, NewID: newID, Log: zerolog.Nop()})
	_, err := broken.Upload(context.Background(), transfer.UploadRequest{
		Source: bytes.NewReader([]byte("partial")), Size: 7, FileName: "a", ChunkSize: 3,
	})
	if !errors.Is(err, models.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	healthy := transfer.New(transfer.Deps{Transport: cli, NewID: newID, Log: zerolog.Nop()})
	if _, err := healthy.Upload(context.Background(), transfer.UploadRequest{
		Source: bytes.NewReader([]byte("complete")), Size: 8, FileName: "b", ChunkSize: 3,
	}); err != nil {
		t.Fatal(err)
	}

	// старим модтайм обеих передач
	old := time.Now().Add(-48 * time.Hour)
	for _, id := range ids {
		if err := os.Chtimes(filepath.Join(root, id, "meta.json"), old, old); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := http.Post(s.URL+"/admin/gc", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		Removed int `json:"removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Removed != 1 {
		t.Fatalf("removed = %d, want 1", out.Removed)
	}

	if _, err := os.Stat(filepath.Join(root, "orphan")); !os.IsNotExist(err) {
		t.Fatalf("orphan transfer not removed")
	}
	if _, err := cli.GetMeta(context.Background(), "kept"); err != nil {
		t.Fatalf("finalized transfer lost: %v", err)
	}
}
