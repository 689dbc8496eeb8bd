// Package placement owns one interactive placement session: the decoded
// photo, the face it is being fitted to, the placement state and the gesture
// in progress.
//
// A Session is opened with a photo, driven with gesture events, rendered on
// demand and closed exactly once, either by Confirm, which hands back the
// immutable Placement, or by Cancel (or the Escape key), which discards it.
// The decoded photo is released on every exit path.
//
// Session is not safe for concurrent use; hosts that share one across
// goroutines serialize access themselves.
package placement

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
	"github.com/xob0t/facetex/pkg/render"
)

// ErrClosed is returned by operations on a confirmed or cancelled session.
var ErrClosed = errors.New("placement session closed")

// State is the mutable placement while a session is open.
type State = gesture.State

// Placement is a confirmed placement: an offset from the canvas centre in
// preview pixels and a scale multiplier.
type Placement struct {
	Position geometry.Point `json:"position"`
	Scale    float64        `json:"scale"`
}

// Default is the placement of a freshly loaded photo.
var Default = Placement{Scale: 1.0}

// Normalize clamps the scale into its domain and zeroes non-finite
// coordinates. Placements produced by Confirm are already normal; this is
// for placements read from files, flags or requests.
func (p Placement) Normalize() Placement {
	out := Placement{
		Position: p.Position,
		Scale:    gesture.ClampScale(p.Scale, gesture.Config{}),
	}
	if math.IsNaN(out.Position.X) || math.IsInf(out.Position.X, 0) {
		out.Position.X = 0
	}
	if math.IsNaN(out.Position.Y) || math.IsInf(out.Position.Y, 0) {
		out.Position.Y = 0
	}
	return out
}

// Option configures a Session.
type Option func(*Session)

// WithConfig overrides the gesture tuning.
func WithConfig(cfg gesture.Config) Option {
	return func(s *Session) {
		s.env.Config = cfg
	}
}

// Session is an open placement session.
type Session struct {
	face      geometry.Face
	faceColor color.Color
	asset     *asset.Asset
	env       gesture.Env

	state   gesture.State
	gesture gesture.Session
	closed  bool
}

// OpenSession decodes the photo read from r and opens a session for it on the
// given face. Decoding is the only blocking step and honours ctx. The
// placement starts centred at scale 1.0.
func OpenSession(ctx context.Context, r io.Reader, face geometry.Face, faceColor color.Color, opts ...Option) (*Session, error) {
	if err := face.Validate(); err != nil {
		return nil, err
	}

	a, err := asset.Decode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return NewSession(a, face, faceColor, opts...)
}

// NewSession opens a session on an already decoded photo. The session takes
// ownership of a and releases it when it closes.
func NewSession(a *asset.Asset, face geometry.Face, faceColor color.Color, opts ...Option) (*Session, error) {
	if a.Image() == nil {
		return nil, asset.ErrEmpty
	}
	if err := face.Validate(); err != nil {
		a.Release()
		return nil, err
	}

	s := &Session{
		face:      face,
		faceColor: faceColor,
		asset:     a,
		env: gesture.Env{
			Canvas: geometry.PreviewCanvas(face),
			Image:  a.Size(),
		},
		state: gesture.InitialState(),
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Debug().
		Float64("canvas_w", s.env.Canvas.W).
		Float64("canvas_h", s.env.Canvas.H).
		Float64("image_w", s.env.Image.W).
		Float64("image_h", s.env.Image.H).
		Msg("Placement session opened")
	return s, nil
}

// Dispatch applies one input event and returns the resulting state. The
// Escape key cancels the session. Events after the session closed are
// ignored.
func (s *Session) Dispatch(ev gesture.Event) State {
	if s.closed {
		return s.state
	}
	if ev.Type == gesture.Key {
		if ev.Key == gesture.EscapeKey {
			s.Cancel()
		}
		return s.state
	}
	s.state, s.gesture = gesture.Reduce(s.state, s.gesture, ev, s.env)
	return s.state
}

// DispatchAll applies events in order and returns the final state.
func (s *Session) DispatchAll(events []gesture.Event) State {
	for _, ev := range events {
		s.Dispatch(ev)
	}
	return s.state
}

// State returns the current placement state.
func (s *Session) State() State { return s.state }

// Gesture returns the gesture in progress.
func (s *Session) Gesture() gesture.Session { return s.gesture }

// Canvas returns the preview canvas size in pixels.
func (s *Session) Canvas() geometry.Size { return s.env.Canvas }

// Face returns the face the session places onto.
func (s *Session) Face() geometry.Face { return s.face }

// FaceColor returns the current preview background color.
func (s *Session) FaceColor() color.Color { return s.faceColor }

// Asset returns the photo being placed, or nil once closed.
func (s *Session) Asset() *asset.Asset {
	if s.closed {
		return nil
	}
	return s.asset
}

// Closed reports whether the session was confirmed or cancelled.
func (s *Session) Closed() bool { return s.closed }

// SetFaceColor changes the preview background.
func (s *Session) SetFaceColor(c color.Color) {
	s.faceColor = c
}

// Replace swaps in a new photo and resets the placement. If decoding fails
// the session keeps its current photo and state.
func (s *Session) Replace(ctx context.Context, r io.Reader) error {
	if s.closed {
		return ErrClosed
	}
	a, err := asset.Decode(ctx, r)
	if err != nil {
		return fmt.Errorf("replace image: %w", err)
	}

	s.asset.Release()
	s.asset = a
	s.env.Image = a.Size()
	s.state = gesture.InitialState()
	s.gesture = gesture.Session{}
	log.Debug().Msg("Placement image replaced")
	return nil
}

// Preview renders the current frame into dst.
func (s *Session) Preview(dst *image.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	return render.Render(dst, s.state, s.asset, s.faceColor)
}

// NewPreview allocates a canvas of the preview size and renders into it.
func (s *Session) NewPreview() (*image.RGBA, error) {
	dst := render.NewCanvas(s.face)
	if err := s.Preview(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Confirm closes the session and returns the placement. It succeeds once.
func (s *Session) Confirm() (Placement, error) {
	if s.closed {
		return Placement{}, ErrClosed
	}
	p := Placement{Position: s.state.Position, Scale: s.state.Scale}
	s.close()
	log.Debug().
		Float64("x", p.Position.X).
		Float64("y", p.Position.Y).
		Float64("scale", p.Scale).
		Msg("Placement confirmed")
	return p, nil
}

// Cancel discards the session. Calling it again has no effect.
func (s *Session) Cancel() {
	if s.closed {
		return
	}
	s.close()
	log.Debug().Msg("Placement cancelled")
}

func (s *Session) close() {
	s.closed = true
	s.gesture = gesture.Session{}
	s.asset.Release()
}
