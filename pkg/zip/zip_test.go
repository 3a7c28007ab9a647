package zip

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func memEntry(name, body string) Entry {
	return Entry{Name: name, Open: func() (io.ReadCloser, fs.FileInfo, error) {
		return io.NopCloser(strings.NewReader(body)), nil, nil
	}}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []Entry{memEntry("README.md", "# Ad"), memEntry("freepik_1.mp4", "video-bytes")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("files = %d, want 2", len(zr.File))
	}
	if zr.File[1].Method != zip.Store {
		t.Fatalf("mp4 method = %d, want Store", zr.File[1].Method)
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "video-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestWriteOpenError(t *testing.T) {
	boom := errors.New("boom")
	err := Write(io.Discard, []Entry{{Name: "x", Open: func() (io.ReadCloser, fs.FileInfo, error) {
		return nil, nil, boom
	}}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
