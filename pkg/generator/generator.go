// Package generator writes rendered previews and textures as PNG or BMP
// images and strings preview frames together into MJPEG AVI replays.
//
// All output follows a unified pipeline: render an image.Image first, then
// encode it in the format named by the output file extension.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is an image output format.
type Format struct {
	Ext         string
	ContentType string
	encode      func(io.Writer, image.Image) error
}

// Encode writes img in this format.
func (f Format) Encode(w io.Writer, img image.Image) error {
	return f.encode(w, img)
}

var formats = map[string]Format{
	".png": {Ext: ".png", ContentType: "image/png", encode: encodePNG},
	".bmp": {Ext: ".bmp", ContentType: "image/bmp", encode: encodeBMP},
}

// LookupFormat returns the format for an extension or bare name
// (".png", "png", ".BMP").
func LookupFormat(ext string) (Format, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := formats[ext]
	if !ok {
		return Format{}, fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}
	return f, nil
}

// WriteFile encodes img to output. The format is inferred from the file
// extension:
//   - ".png" → PNG image
//   - ".bmp" → 24-bit BMP image
func WriteFile(output string, img image.Image) error {
	f, err := LookupFormat(filepath.Ext(output))
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer file.Close()

	if err := f.Encode(file, img); err != nil {
		return err
	}
	return file.Sync()
}

// Encode writes img to w in the format named by ext (".png" or ".bmp").
// This is useful for in-memory output (HTTP responses, WASM).
func Encode(w io.Writer, ext string, img image.Image) error {
	f, err := LookupFormat(ext)
	if err != nil {
		return err
	}
	return f.Encode(w, img)
}
