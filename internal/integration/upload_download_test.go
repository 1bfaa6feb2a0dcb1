package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net/http/httptest"
	"testing"

	"github.com/sir_venger/chunkxfer/internal/app/resthttp"
	"github.com/sir_venger/chunkxfer/internal/app/storagehttp"
	"github.com/sir_venger/chunkxfer/internal/config"
)

func Test_UploadDownload_DistinctAndIntegrity(t *testing.T) {
	s1 := httptest.NewServer(storagehttp.New(t.TempDir()))
	s2 := httptest.NewServer(storagehttp.New(t.TempDir()))
	s3 := httptest.NewServer(storagehttp.New(t.TempDir()))
	t.Cleanup(func() { s1.Close(); s2.Close(); s3.Close() })

	cfg := &config.Config{ListenAddr: ":0", MetaDSN: "memory://", Storages: []string{s1.URL, s2.URL, s3.URL}, ChunkSize: 1 << 18}
	h, srv, err := resthttp.NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	rest := httptest.NewServer(h)
	t.Cleanup(rest.Close)

	payloads := [][]byte{
		bytes.Repeat([]byte{0xA1, 0xB2, 0xC3, 0xD4}, 1<<18), // 1 MiB, ровно 4 чанка
		bytes.Repeat([]byte{0x01}, (1<<18)+1),
		{},
	}

	ids := map[string]bool{}
	for i, payload := range payloads {
		want := sha256.Sum256(payload)

		res, err := uploadFile(rest.URL+"/files", payload)
		if err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if ids[res.FileID] {
			t.Fatalf("duplicate file id %s", res.FileID)
		}
		ids[res.FileID] = true

		got, err := downloadFile(rest.URL + "/files/" + res.FileID)
		if err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if sha256.Sum256(got) != want {
			t.Fatalf("payload %d: sha mismatch", i)
		}
	}
}
