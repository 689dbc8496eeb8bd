// encode.go - PNG and BMP encoders.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// encodePNG encodes img as PNG.
func encodePNG(w io.Writer, img image.Image) error {
	if err := pngEncoder.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

// encodeBMP encodes img as an uncompressed bottom-up BMP. Opaque images are
// written with 24 bits per pixel.
func encodeBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encode BMP: %w", err)
	}
	return nil
}
