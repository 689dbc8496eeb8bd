// orientation.go - EXIF orientation lookup and pixel reordering.
// Phone cameras store pixels in sensor order and record the upright rotation
// in EXIF; without this step a portrait photo lands sideways on the face.
package asset

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// readOrientation returns the EXIF orientation tag, or 1 when the file has
// no usable EXIF block (PNG, stripped JPEG, ...).
func readOrientation(data []byte) int {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF orientation, assuming upright")
		return 1
	}
	o := int(exifData.Orientation)
	if o < 1 || o > 8 {
		return 1
	}
	return o
}

// Orient returns img transformed according to EXIF orientation o.
// Orientation 1 (or any unknown value) returns img unchanged.
func Orient(img image.Image, o int) image.Image {
	if o < 2 || o > 8 {
		return img
	}

	src := toRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch o {
			case 2: // mirror horizontal
				sx, sy = w-1-x, y
			case 3: // rotate 180
				sx, sy = w-1-x, h-1-y
			case 4: // mirror vertical
				sx, sy = x, h-1-y
			case 5: // transpose
				sx, sy = y, x
			case 6: // rotate 90 clockwise
				sx, sy = y, h-1-x
			case 7: // transverse
				sx, sy = w-1-y, h-1-x
			case 8: // rotate 90 counter-clockwise
				sx, sy = w-1-y, x
			}
			si := src.PixOffset(sx, sy)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// toRGBA returns img as a zero-origin *image.RGBA, copying only if needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
