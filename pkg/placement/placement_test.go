package placement

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
)

var sky = color.RGBA{0x87, 0xce, 0xeb, 0xff}

func photo(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func open(t *testing.T) *Session {
	t.Helper()
	s, err := OpenSession(context.Background(), bytes.NewReader(photo(t, 400, 300)), geometry.DefaultFace, sky)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	return s
}

func TestOpenSession(t *testing.T) {
	s := open(t)
	if s.Canvas() != (geometry.Size{W: 200, H: 600}) {
		t.Errorf("canvas = %+v, want 200x600", s.Canvas())
	}
	if s.State() != gesture.InitialState() {
		t.Errorf("state = %+v, want initial", s.State())
	}
	if s.Closed() {
		t.Error("new session is closed")
	}
}

func TestOpenSessionErrors(t *testing.T) {
	ctx := context.Background()

	_, err := OpenSession(ctx, bytes.NewReader([]byte("nope")), geometry.DefaultFace, sky)
	if !errors.Is(err, asset.ErrDecode) {
		t.Errorf("corrupt image: err = %v, want ErrDecode", err)
	}

	_, err = OpenSession(ctx, bytes.NewReader(photo(t, 4, 4)), geometry.Face{Height: 0, Width: 1}, sky)
	if !errors.Is(err, geometry.ErrInvalidFace) {
		t.Errorf("zero face: err = %v, want ErrInvalidFace", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = OpenSession(cancelled, bytes.NewReader(photo(t, 4, 4)), geometry.DefaultFace, sky)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx: err = %v, want context.Canceled", err)
	}
}

func TestConfirmOnce(t *testing.T) {
	s := open(t)
	a := s.Asset()
	s.DispatchAll([]gesture.Event{
		gesture.Down(1, 100, 300),
		gesture.Move(1, 120, 290),
		gesture.Up(1),
		gesture.WheelBy(-1),
	})

	p, err := s.Confirm()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	want := Placement{Position: geometry.Point{X: 20, Y: -10}, Scale: 1.1}
	if p != want {
		t.Errorf("placement = %+v, want %+v", p, want)
	}
	if !a.Released() {
		t.Error("asset not released on confirm")
	}

	if _, err := s.Confirm(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Confirm: err = %v, want ErrClosed", err)
	}

	// The confirmed placement is a copy; later events cannot reach it.
	s.Dispatch(gesture.WheelBy(-1))
	if p != want {
		t.Errorf("confirmed placement mutated: %+v", p)
	}
}

func TestEscapeCancels(t *testing.T) {
	s := open(t)
	a := s.Asset()
	s.Dispatch(gesture.Down(1, 10, 10))
	s.Dispatch(gesture.KeyPress("Enter"))
	if s.Closed() {
		t.Fatal("non-Escape key closed the session")
	}

	s.Dispatch(gesture.KeyPress(gesture.EscapeKey))
	if !s.Closed() {
		t.Fatal("Escape did not close the session")
	}
	if !a.Released() {
		t.Error("asset not released on Escape")
	}
	if s.Gesture().Kind != gesture.None {
		t.Errorf("gesture kind = %v after cancel", s.Gesture().Kind)
	}
	if _, err := s.Confirm(); !errors.Is(err, ErrClosed) {
		t.Errorf("Confirm after cancel: err = %v, want ErrClosed", err)
	}
	if err := s.Preview(image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, ErrClosed) {
		t.Errorf("Preview after cancel: err = %v, want ErrClosed", err)
	}
}

func TestCancelIdempotent(t *testing.T) {
	s := open(t)
	before := s.State()
	s.Cancel()
	s.Cancel()
	if st := s.Dispatch(gesture.WheelBy(-1)); st != before {
		t.Errorf("event after cancel changed state: %+v", st)
	}
}

func TestReplaceResetsPlacement(t *testing.T) {
	s := open(t)
	old := s.Asset()
	s.Dispatch(gesture.WheelBy(-1))
	s.Dispatch(gesture.Down(1, 0, 0))

	if err := s.Replace(context.Background(), bytes.NewReader(photo(t, 30, 90))); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !old.Released() {
		t.Error("previous asset not released")
	}
	if s.State() != gesture.InitialState() {
		t.Errorf("state = %+v, want initial", s.State())
	}
	if s.Gesture().Active() != 0 {
		t.Error("gesture survived replace")
	}

	if err := s.Replace(context.Background(), bytes.NewReader(nil)); !errors.Is(err, asset.ErrDecode) {
		t.Errorf("bad replace: err = %v, want ErrDecode", err)
	}
	if s.Asset() == nil || s.Asset().Released() {
		t.Error("failed replace dropped the current asset")
	}
}

func TestPreview(t *testing.T) {
	s := open(t)
	img, err := s.NewPreview()
	if err != nil {
		t.Fatalf("NewPreview: %v", err)
	}
	if img.Bounds().Size() != image.Pt(200, 600) {
		t.Errorf("preview size = %v", img.Bounds().Size())
	}
	// White photo covers the middle; the face color shows above it.
	if c := img.RGBAAt(100, 300); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("centre = %v, want white", c)
	}
	if c := img.RGBAAt(100, 50); c == (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("top = %v, want face color", c)
	}

	s.SetFaceColor(color.RGBA{255, 0, 0, 255})
	if err := s.Preview(img); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if c := img.RGBAAt(100, 50); c.R < 250 || c.G > 5 {
		t.Errorf("top after recolor = %v, want red", c)
	}
}

func TestWithConfig(t *testing.T) {
	s, err := OpenSession(context.Background(), bytes.NewReader(photo(t, 10, 10)), geometry.DefaultFace, sky,
		WithConfig(gesture.Config{WheelStep: 0.5}))
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if st := s.Dispatch(gesture.WheelBy(-3)); st.Scale != 1.5 {
		t.Errorf("scale = %v, want 1.5", st.Scale)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want Placement
	}{
		{Placement{Scale: 1}, Placement{Scale: 1}},
		{Placement{Scale: 9}, Placement{Scale: gesture.MaxScale}},
		{Placement{Scale: 0}, Placement{Scale: gesture.MinScale}},
		{Placement{Position: geometry.Point{X: math.NaN(), Y: 4}, Scale: math.NaN()}, Placement{Position: geometry.Point{Y: 4}, Scale: 1}},
		{Placement{Position: geometry.Point{X: 3, Y: math.Inf(-1)}, Scale: 2}, Placement{Position: geometry.Point{X: 3}, Scale: 2}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
