// Package render draws the interactive preview canvas.
//
// Render is a pure procedure: given the canvas, the placement state, the
// decoded photo and the face color it repaints every pixel of the canvas and
// touches nothing else. Hosts call it after each state transition.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
)

// Border style of the preview canvas.
const (
	BorderColor = "#cccccc"
	BorderWidth = 2.0
)

// NewCanvas allocates a preview canvas sized for the face.
func NewCanvas(face geometry.Face) *image.RGBA {
	px := geometry.PreviewCanvas(face).Pixels()
	return image.NewRGBA(image.Rect(0, 0, max(px.X, 1), max(px.Y, 1)))
}

// Render paints one preview frame into dst: face color background, border,
// then the photo at its placement. A nil or released asset draws only the
// background and border. A nil faceColor paints geometry.DefaultColor.
func Render(dst *image.RGBA, st gesture.State, a *asset.Asset, faceColor color.Color) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	if err := drawFrame(dst, faceColor); err != nil {
		return err
	}

	img := a.Image()
	if img == nil {
		return nil
	}

	canvas := geometry.Size{W: float64(w), H: float64(h)}
	r := geometry.ComputeDrawRect(canvas, a.Size(), st.Scale, st.Position)
	r.X += float64(b.Min.X)
	r.Y += float64(b.Min.Y)
	DrawImage(dst, img, r)
	return nil
}

// drawFrame fills the background and strokes the border with gg, then copies
// the result onto dst.
func drawFrame(dst *image.RGBA, faceColor color.Color) error {
	b := dst.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	defer dc.Close()

	bg := gg.Hex(geometry.DefaultColor)
	if faceColor != nil {
		bg = gg.FromColor(faceColor)
	}
	dc.ClearWithColor(bg)
	dc.SetHexColor(BorderColor)
	dc.SetLineWidth(BorderWidth)
	dc.DrawRectangle(0, 0, float64(b.Dx()), float64(b.Dy()))
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke border: %w", err)
	}

	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Src)
	return nil
}

// DrawImage resamples src into the rectangle r of dst with bilinear
// filtering. Parts of r outside dst are cropped, never squeezed.
func DrawImage(dst draw.Image, src image.Image, r geometry.Rect) {
	sb := src.Bounds()
	if r.W <= 0 || r.H <= 0 || sb.Empty() {
		return
	}

	sx := r.W / float64(sb.Dx())
	sy := r.H / float64(sb.Dy())
	m := f64.Aff3{
		sx, 0, r.X - float64(sb.Min.X)*sx,
		0, sy, r.Y - float64(sb.Min.Y)*sy,
	}
	xdraw.BiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
}
