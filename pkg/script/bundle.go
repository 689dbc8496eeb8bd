// bundle.go - Pack a script and its inputs into a single ZIP bundle.
// Entries are Zstandard-compressed; Load reads both zstd and deflate entries.
package script

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	zip.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		d, err := zstd.NewReader(r)
		if err != nil {
			return errReadCloser{err}
		}
		return d.IOReadCloser()
	})
}

type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }

// Bundle writes s, its image and its custom font (if any) to w as a ZIP.
// Input paths inside the bundled script.json are rewritten to the entry
// names, so the bundle loads from any directory.
func Bundle(w io.Writer, s *Script) error {
	if s.Image == "" {
		return fmt.Errorf("bundle: script has no image")
	}

	packed := *s
	files := map[string]string{}
	packed.Image = "image" + filepath.Ext(s.Image)
	files[packed.Image] = s.Image
	if s.Video.Font != "" {
		packed.Video.Font = "font" + filepath.Ext(s.Video.Font)
		files[packed.Video.Font] = s.Video.Font
	}

	scriptJSON, err := json.MarshalIndent(packed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := addEntry(zw, BundleScriptName, scriptJSON); err != nil {
		return err
	}
	for name, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("bundle %s: %w", path, err)
		}
		if err := addEntry(zw, name, data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// WriteBundle writes Bundle(s) to a file.
func WriteBundle(output string, s *Script) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := Bundle(f, s); err != nil {
		return err
	}
	return f.Sync()
}

func addEntry(zw *zip.Writer, name string, data []byte) error {
	ew, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zipMethodZstd,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := ew.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}
