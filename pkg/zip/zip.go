package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Entry is one file to place in an archive. Open is called lazily so large
// videos are streamed instead of held in memory.
type Entry struct {
	Name string
	Open func() (io.ReadCloser, fs.FileInfo, error)
}

// Write streams entries into a zip archive on w. Videos are stored without
// compression since mp4 is already compressed.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := writeEntry(zw, e); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, e Entry) error {
	rc, info, err := e.Open()
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", e.Name, err)
	}
	defer rc.Close()

	hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
	if info != nil {
		hdr.Modified = info.ModTime()
	}
	if strings.EqualFold(path.Ext(e.Name), ".mp4") {
		hdr.Method = zip.Store
	}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("zip: header %s: %w", e.Name, err)
	}
	if _, err := io.Copy(fw, rc); err != nil {
		return fmt.Errorf("zip: copy %s: %w", e.Name, err)
	}
	return nil
}
