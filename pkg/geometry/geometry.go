// Package geometry converts between preview-canvas pixels, normalized offsets
// and texture-canvas pixels.
//
// The preview renderer and the texture synthesizer both derive their draw
// rectangles from these functions, so the two renderings agree at any
// resolution. Nothing in this package holds state.
package geometry

import (
	"image"
	"math"
)

// Canvas bounds and texture constants.
const (
	MaxPreviewWidth  = 400
	MaxPreviewHeight = 600
	TextureWidth     = 512

	// VisibleFloor is the fraction of the drawn image's width and height
	// that must stay inside the canvas.
	VisibleFloor = 0.2
)

// PreviewBounds is the fixed design box of the interactive canvas. Gesture
// offsets are accumulated against it, so it is also the "from" size when a
// position is carried over to the texture canvas.
var PreviewBounds = Size{W: MaxPreviewWidth, H: MaxPreviewHeight}

// Point is a 2D position or offset in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool { return finite(p.X) && finite(p.Y) }

// Size is a width/height pair in pixels. Fractional values are allowed.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Aspect returns W/H, or 0 for a degenerate size.
func (s Size) Aspect() float64 {
	if !s.valid() {
		return 0
	}
	return s.W / s.H
}

// Floor truncates both dimensions to whole pixels, the way a browser canvas
// truncates its width and height attributes.
func (s Size) Floor() Size {
	return Size{W: math.Floor(s.W), H: math.Floor(s.H)}
}

// Pixels returns the truncated size as an image.Point.
func (s Size) Pixels() image.Point {
	f := s.Floor()
	return image.Pt(int(f.W), int(f.H))
}

func (s Size) valid() bool {
	return finite(s.W) && finite(s.H) && s.W > 0 && s.H > 0
}

// Rect is an axis-aligned rectangle with a fractional origin.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Overlap returns the size of the part of r that lies inside a canvas of
// the given size anchored at the origin.
func (r Rect) Overlap(canvas Size) Size {
	w := math.Min(r.X+r.W, canvas.W) - math.Max(r.X, 0)
	h := math.Min(r.Y+r.H, canvas.H) - math.Max(r.Y, 0)
	return Size{W: math.Max(w, 0), H: math.Max(h, 0)}
}

// ComputeCanvasSize fits a box with the face's height/width ratio into
// (maxW, maxH). The width is tried first; if the resulting height overflows,
// the height is pinned and the width derived from it.
//
// A non-positive or non-finite face falls back to the full bounding box.
func ComputeCanvasSize(faceHeight, faceWidth, maxW, maxH float64) Size {
	ratio := faceHeight / faceWidth
	if !finite(ratio) || ratio <= 0 {
		return Size{W: maxW, H: maxH}
	}

	w := maxW
	h := maxW * ratio
	if h > maxH {
		h = maxH
		w = maxH / ratio
	}
	return Size{W: w, H: h}
}

// ComputeDrawRect places an image of the given natural size on a canvas.
//
// The image is first fitted to the canvas width times scale; if that makes
// it taller than the canvas height times scale, it is letterboxed to the
// height instead. Either way the image covers one full canvas dimension at
// scale 1. The rectangle is centred and then offset by position.
func ComputeDrawRect(canvas, img Size, scale float64, position Point) Rect {
	cx := canvas.W/2 + position.X
	cy := canvas.H/2 + position.Y

	aspect := img.Aspect()
	if aspect == 0 {
		return Rect{X: cx, Y: cy}
	}

	drawW := canvas.W * scale
	drawH := drawW / aspect
	if drawH > canvas.H*scale {
		drawH = canvas.H * scale
		drawW = drawH * aspect
	}

	return Rect{
		X: (canvas.W-drawW)/2 + position.X,
		Y: (canvas.H-drawH)/2 + position.Y,
		W: drawW,
		H: drawH,
	}
}

// MaxOffset returns the largest absolute offset per axis that still keeps
// VisibleFloor of the drawn image inside the canvas. At that offset the
// image's near edge sits VisibleFloor*draw inside the opposite canvas edge.
//
// This is deliberately tighter than (canvas + draw*(1-VisibleFloor))/2, which
// allows 180 instead of 160 for a 200px-wide image on a 200px canvas and so
// leaves only half of VisibleFloor in view.
func MaxOffset(canvas, draw Size) Point {
	return Point{
		X: (canvas.W+draw.W)/2 - draw.W*VisibleFloor,
		Y: (canvas.H+draw.H)/2 - draw.H*VisibleFloor,
	}
}

// ClampPosition limits a proposed offset to [-MaxOffset, MaxOffset] on each
// axis. A non-finite coordinate is treated as zero.
func ClampPosition(canvas, draw Size, proposed Point) Point {
	m := MaxOffset(canvas, draw)
	return Point{
		X: clamp(zeroIfNaN(proposed.X), -m.X, m.X),
		Y: clamp(zeroIfNaN(proposed.Y), -m.Y, m.Y),
	}
}

// MapPositionBetweenCanvases rescales an offset accumulated on a canvas of
// size from onto a canvas of size to, each axis independently. Positions
// recorded on the preview are always mapped with from = PreviewBounds.
func MapPositionBetweenCanvases(position Point, from, to Size) Point {
	out := position
	if from.W > 0 && finite(from.W) {
		out.X = position.X * to.W / from.W
	}
	if from.H > 0 && finite(from.H) {
		out.Y = position.Y * to.H / from.H
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
