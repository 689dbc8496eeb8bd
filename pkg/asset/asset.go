// Package asset decodes the photograph selected for placement.
//
// An Asset is loaded once per selected file and owned by whoever opened it
// (normally a placement session) until Release is called. EXIF orientation is
// applied at decode time so every consumer sees the upright image and the
// same natural size.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"  // register GIF with image.Decode
	_ "image/jpeg" // register JPEG with image.Decode
	_ "image/png"  // register PNG with image.Decode

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"  // register BMP with image.Decode
	_ "golang.org/x/image/tiff" // register TIFF with image.Decode
	_ "golang.org/x/image/webp" // register WebP with image.Decode

	"github.com/xob0t/facetex/pkg/geometry"
)

var (
	// ErrDecode reports corrupt or unsupported image bytes.
	ErrDecode = errors.New("decode image")
	// ErrEmpty reports an image with no pixels.
	ErrEmpty = errors.New("image has no pixels")
)

// Asset is a decoded, upright bitmap. It is not safe for concurrent use.
type Asset struct {
	img         image.Image
	format      string
	orientation int
	size        geometry.Size
	released    bool
}

// Decode reads r fully and decodes it. Decoding runs off the caller's
// goroutine so a cancelled ctx returns promptly; the partially decoded
// bitmap is dropped.
func Decode(ctx context.Context, r io.Reader) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	type result struct {
		a   *Asset
		err error
	}
	done := make(chan result, 1)
	go func() {
		a, err := DecodeBytes(data)
		done <- result{a, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.a, res.err
	}
}

// DecodeBytes decodes an in-memory image and applies its EXIF orientation.
func DecodeBytes(data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmpty)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmpty)
	}

	o := readOrientation(data)
	img = Orient(img, o)
	b := img.Bounds()

	log.Debug().
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Int("orientation", o).
		Msg("Image decoded")

	return &Asset{
		img:         img,
		format:      format,
		orientation: o,
		size:        geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())},
	}, nil
}

// FromImage wraps an already decoded image. No orientation is applied.
func FromImage(img image.Image) (*Asset, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	b := img.Bounds()
	return &Asset{
		img:         img,
		format:      "memory",
		orientation: 1,
		size:        geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())},
	}, nil
}

// Image returns the upright bitmap, or nil once released.
func (a *Asset) Image() image.Image {
	if a == nil {
		return nil
	}
	return a.img
}

// Size returns the natural size after orientation.
func (a *Asset) Size() geometry.Size {
	if a == nil {
		return geometry.Size{}
	}
	return a.size
}

// Format returns the decoder name ("jpeg", "png", ...).
func (a *Asset) Format() string { return a.format }

// Orientation returns the EXIF orientation (1-8) that was applied.
func (a *Asset) Orientation() int { return a.orientation }

// Release drops the bitmap. It is safe to call more than once.
func (a *Asset) Release() {
	if a == nil {
		return
	}
	if a.released {
		return
	}
	a.img = nil
	a.released = true
	log.Debug().Str("format", a.format).Msg("Image released")
}

// Released reports whether Release has been called.
func (a *Asset) Released() bool {
	if a == nil {
		return true
	}
	return a.released
}
