package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
)

var (
	faceColor = color.RGBA{0x87, 0xce, 0xeb, 0xff}
	red       = color.RGBA{255, 0, 0, 255}
	green     = color.RGBA{0, 255, 0, 255}
)

func near(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	d := func(x, y uint32) bool {
		x, y = x>>8, y>>8
		if x > y {
			return x-y <= 2
		}
		return y-x <= 2
	}
	return d(ar, br) && d(ag, bg) && d(ab, bb)
}

// halves returns a w x h photo, green on the left half and red on the right.
func halves(t *testing.T, w, h int) *asset.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, green)
			} else {
				img.SetRGBA(x, y, red)
			}
		}
	}
	a, err := asset.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	return a
}

func TestNewCanvas(t *testing.T) {
	c := NewCanvas(geometry.DefaultFace)
	if c.Bounds().Size() != image.Pt(200, 600) {
		t.Errorf("canvas = %v, want 200x600", c.Bounds().Size())
	}
	c = NewCanvas(geometry.Face{Height: 1, Width: 1})
	if c.Bounds().Size() != image.Pt(400, 400) {
		t.Errorf("square canvas = %v, want 400x400", c.Bounds().Size())
	}
}

func TestRenderBackgroundOnly(t *testing.T) {
	dst := NewCanvas(geometry.DefaultFace)
	if err := Render(dst, gesture.InitialState(), nil, faceColor); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c := dst.At(100, 300); !near(c, faceColor) {
		t.Errorf("centre = %v, want face color", c)
	}
	if c := dst.At(0, 300); near(c, faceColor) {
		t.Errorf("left edge = %v, want border", c)
	}
}

func TestRenderPlacesImage(t *testing.T) {
	dst := NewCanvas(geometry.DefaultFace)
	a := halves(t, 40, 30)

	if err := Render(dst, gesture.InitialState(), a, faceColor); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// 200x150 draw rect centred vertically: y in [225, 375).
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{50, 300, green},
		{150, 300, red},
		{100, 100, faceColor},
		{100, 500, faceColor},
	}
	for _, tt := range tests {
		if c := dst.At(tt.x, tt.y); !near(c, tt.want) {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, c, tt.want)
		}
	}
}

func TestRenderCropsOffCanvas(t *testing.T) {
	dst := NewCanvas(geometry.DefaultFace)
	a := halves(t, 40, 30)

	// Shifted left by half the draw width: only the red half remains.
	st := gesture.State{Position: geometry.Point{X: -100}, Scale: 1}
	if err := Render(dst, st, a, faceColor); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c := dst.At(10, 300); !near(c, red) {
		t.Errorf("pixel (10,300) = %v, want red (image squeezed instead of cropped?)", c)
	}
	if c := dst.At(150, 300); !near(c, faceColor) {
		t.Errorf("pixel (150,300) = %v, want face color", c)
	}
}

func TestRenderIdempotent(t *testing.T) {
	a := halves(t, 64, 48)
	st := gesture.State{Position: geometry.Point{X: 13.5, Y: -40.25}, Scale: 1.7}

	first := NewCanvas(geometry.DefaultFace)
	second := NewCanvas(geometry.DefaultFace)
	for _, dst := range []*image.RGBA{first, second, second} {
		if err := Render(dst, st, a, faceColor); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("repeated renders differ")
	}
}

func TestRenderReleasedAsset(t *testing.T) {
	a := halves(t, 10, 10)
	a.Release()
	dst := NewCanvas(geometry.DefaultFace)
	if err := Render(dst, gesture.InitialState(), a, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c := dst.At(100, 300); !near(c, faceColor) {
		t.Errorf("centre = %v, want default face color", c)
	}
}

func TestLabel(t *testing.T) {
	st := gesture.State{Position: geometry.Point{X: 30, Y: -20}, Scale: 1.2}
	if got, want := Label(st), "scale 1.20  x +30.0  y -20.0"; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
}

func TestAnnotate(t *testing.T) {
	an, err := NewAnnotator("/nonexistent/font.ttf", 0)
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}
	dst := NewCanvas(geometry.DefaultFace)
	if err := Render(dst, gesture.InitialState(), nil, faceColor); err != nil {
		t.Fatalf("Render: %v", err)
	}
	top := append([]byte(nil), dst.Pix[:dst.Stride*100]...)

	an.Annotate(dst, gesture.InitialState())

	if !bytes.Equal(top, dst.Pix[:dst.Stride*100]) {
		t.Error("annotation touched the top of the frame")
	}
	if c := dst.At(100, 598); near(c, faceColor) {
		t.Error("annotation strip not drawn")
	}
}
