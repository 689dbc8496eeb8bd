// Package texture produces the final face texture from a confirmed placement.
//
// The synthesizer re-derives the preview geometry at the texture's own
// resolution: the confirmed offset is carried from the fixed preview bounds
// into texture pixels, the draw rectangle is recomputed with the same rule the
// preview uses, and the photo is drawn with the same resampler. The result is
// flipped vertically because texture coordinates run bottom-up.
package texture

import (
	"errors"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/placement"
	"github.com/xob0t/facetex/pkg/render"
)

// ErrNoImage is returned when the asset holds no bitmap (nil or released).
var ErrNoImage = errors.New("no image to synthesize")

var white = color.RGBA{255, 255, 255, 255}

// Synthesize draws the photo at placement p onto a white texture sized for
// the face and returns it flipped for texture space. Identical inputs give
// byte-identical output.
func Synthesize(a *asset.Asset, p placement.Placement, face geometry.Face) (*image.RGBA, error) {
	if err := face.Validate(); err != nil {
		return nil, err
	}
	img := a.Image()
	if img == nil {
		return nil, ErrNoImage
	}
	p = p.Normalize()

	size := geometry.TextureSize(face)
	dst := generator.NewSolidImage(size.X, size.Y, white)

	tex := geometry.Size{W: float64(size.X), H: float64(size.Y)}
	pos := geometry.MapPositionBetweenCanvases(p.Position, geometry.PreviewBounds, tex)
	r := geometry.ComputeDrawRect(tex, a.Size(), p.Scale, pos)
	render.DrawImage(dst, img, r)

	FlipVertical(dst)
	return dst, nil
}

// SynthesizeBytes decodes an encoded photo and synthesizes its texture. It
// needs no session. A decode failure wraps asset.ErrDecode and returns no
// bitmap.
func SynthesizeBytes(data []byte, p placement.Placement, face geometry.Face) (*image.RGBA, error) {
	a, err := asset.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	defer a.Release()
	return Synthesize(a, p, face)
}

// SynthesizeOrFallback is SynthesizeBytes for hosts that must always hand a
// bitmap to the material. On failure it returns Fallback(face, faceColor)
// and reports fellBack.
func SynthesizeOrFallback(data []byte, p placement.Placement, face geometry.Face, faceColor color.Color) (img *image.RGBA, fellBack bool) {
	img, err := SynthesizeBytes(data, p, face)
	if err == nil {
		return img, false
	}
	log.Warn().Err(err).Msg("Texture synthesis failed, using flat face color")
	return Fallback(face, faceColor), true
}

// Fallback returns a flat texture of the face color, the stand-in used when
// no photo can be drawn.
func Fallback(face geometry.Face, faceColor color.Color) *image.RGBA {
	if faceColor == nil {
		faceColor = generator.ParseHexRGBA(geometry.DefaultColor)
	}
	size := geometry.TextureSize(face)
	return generator.NewSolidImage(size.X, size.Y, color.RGBAModel.Convert(faceColor).(color.RGBA))
}

// FlipVertical reverses the row order of img in place.
func FlipVertical(img *image.RGBA) {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.PixOffset(b.Min.X, top)
		u := img.PixOffset(b.Min.X, bottom)
		copy(tmp, img.Pix[t:t+rowLen])
		copy(img.Pix[t:t+rowLen], img.Pix[u:u+rowLen])
		copy(img.Pix[u:u+rowLen], tmp)
	}
}
