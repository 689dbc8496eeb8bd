// face.go - Face dimensions and the canvas sizes derived from them.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidFace is returned for faces whose height or width is not a
// positive finite number.
var ErrInvalidFace = errors.New("invalid face dimensions")

// DefaultColor is the face color shown before the user picks one.
const DefaultColor = "#87CEEB"

// Face is the flat surface the image is projected onto. Units do not
// matter; only the height/width ratio is used.
type Face struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// DefaultFace is the stock pylon front panel: 3.0 high, 1.0 wide.
var DefaultFace = Face{Height: 3.0, Width: 1.0}

// Validate checks that both dimensions are positive and finite.
func (f Face) Validate() error {
	if !finite(f.Height) || !finite(f.Width) || f.Height <= 0 || f.Width <= 0 {
		return fmt.Errorf("%w: height=%v width=%v", ErrInvalidFace, f.Height, f.Width)
	}
	return nil
}

// Ratio returns height/width.
func (f Face) Ratio() float64 {
	return f.Height / f.Width
}

// PreviewCanvas returns the pixel size of the interactive canvas for the
// face, truncated to whole pixels.
func PreviewCanvas(f Face) Size {
	return ComputeCanvasSize(f.Height, f.Width, PreviewBounds.W, PreviewBounds.H).Floor()
}

// TextureSize returns the texture bitmap size: a fixed width and a height
// derived from the face ratio, independent of the preview bounds.
func TextureSize(f Face) image.Point {
	h := 1
	if r := f.Ratio(); finite(r) && r > 0 {
		h = max(int(math.Round(TextureWidth*r)), 1)
	}
	return image.Pt(TextureWidth, h)
}
