package video

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadStreamsToNestedPath(t *testing.T) {
	t.Parallel()
	payload := bytes.Repeat([]byte("mp4!"), 10_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "job", "freepik_task.mp4")
	n, err := Download(context.Background(), srv.Client(), srv.URL+"/video.mp4", dest)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("bytes written = %d, want %d", n, len(payload))
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded content mismatch")
	}
	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Fatalf("dir entries = %d, want only the video (temp file left behind?)", len(entries))
	}
}

func TestDownloadRejectsErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp4")
	if _, err := Download(context.Background(), srv.Client(), srv.URL, dest); err == nil {
		t.Fatalf("expected error for 410 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("dest should not exist after failed download, stat err = %v", err)
	}
}

func TestDownloadRequiresURL(t *testing.T) {
	t.Parallel()
	if _, err := Download(context.Background(), nil, " ", filepath.Join(t.TempDir(), "x.mp4")); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
