// annotate.go - Text readout of the placement for replay video frames.
// Uses golang.org/x/image/font for OpenType rendering. Defaults to Go Regular
// font when no custom font is specified or when custom font loading fails.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/facetex/pkg/gesture"
)

// DefaultFontSize is the readout size in points at 72 DPI.
const DefaultFontSize = 12.0

// Annotator draws a one-line placement readout along the bottom of a frame.
type Annotator struct {
	face    font.Face
	padding int
}

// NewAnnotator creates an annotator with the specified font.
// If fontPath is empty or unreadable, uses the embedded Go font.
func NewAnnotator(fontPath string, size float64) (*Annotator, error) {
	var fontData []byte

	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			log.Warn().Err(err).Str("path", fontPath).Msg("Could not load custom font, using default")
		} else {
			fontData = data
		}
	}
	if fontData == nil {
		fontData = goregular.TTF
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	if size <= 0 {
		size = DefaultFontSize
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &Annotator{face: face, padding: int(size / 2)}, nil
}

// Label formats the placement readout.
func Label(st gesture.State) string {
	return fmt.Sprintf("scale %.2f  x %+.1f  y %+.1f", st.Scale, st.Position.X, st.Position.Y)
}

// Annotate draws Label(st) on a translucent strip at the bottom of dst.
func (a *Annotator) Annotate(dst *image.RGBA, st gesture.State) {
	m := a.face.Metrics()
	lineH := (m.Ascent + m.Descent).Ceil()
	b := dst.Bounds()

	strip := image.Rect(b.Min.X, b.Max.Y-lineH-2*a.padding, b.Max.X, b.Max.Y).Intersect(b)
	draw.Draw(dst, strip, image.NewUniform(color.RGBA{0, 0, 0, 128}), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: a.face,
		Dot:  fixed.P(b.Min.X+a.padding, b.Max.Y-a.padding-m.Descent.Ceil()),
	}
	drawer.DrawString(Label(st))
}
