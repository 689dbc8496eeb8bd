// Package gesture turns a stream of normalized pointer, wheel and key events
// into placement changes.
//
// The controller is an explicit reducer: Reduce takes the current placement
// state, the current gesture session and one event, and returns the next
// state and session. It holds no hidden state and performs no I/O, so any
// host can drive it: a browser canvas, a native window, an HTTP session or a
// test.
//
// Every change to position or scale is clamped before it is returned, so no
// out-of-range state is ever observable.
package gesture

import (
	"math"

	"github.com/xob0t/facetex/pkg/geometry"
)

// Tuning defaults. The sensitivity and wheel step are empirical UX values.
const (
	DefaultSensitivity = 200.0
	DefaultWheelStep   = 0.1
	MinScale           = 0.5
	MaxScale           = 3.0
)

// Config tunes the controller. Zero fields take the defaults above. Scale
// bounds outside [MinScale, MaxScale] are ignored.
type Config struct {
	// Sensitivity divides the change in pinch distance (pixels) to obtain the
	// scale delta.
	Sensitivity float64
	// WheelStep is the scale change per wheel notch.
	WheelStep float64
	MinScale  float64
	MaxScale  float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Sensitivity: DefaultSensitivity,
		WheelStep:   DefaultWheelStep,
		MinScale:    MinScale,
		MaxScale:    MaxScale,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Sensitivity > 0 {
		d.Sensitivity = c.Sensitivity
	}
	if c.WheelStep > 0 {
		d.WheelStep = c.WheelStep
	}
	// Custom bounds can only narrow [MinScale, MaxScale], the range
	// placement.Normalize enforces on confirm.
	if c.MinScale > MinScale && c.MinScale <= MaxScale {
		d.MinScale = c.MinScale
	}
	if c.MaxScale > 0 && c.MaxScale < MaxScale && c.MaxScale >= d.MinScale {
		d.MaxScale = c.MaxScale
	}
	return d
}

// State is the mutable placement: an offset from the canvas centre in
// preview-canvas pixels and a scale multiplier.
type State struct {
	Position geometry.Point `json:"position"`
	Scale    float64        `json:"scale"`
}

// InitialState is the placement right after an image loads: centred, 1.0.
func InitialState() State {
	return State{Scale: 1.0}
}

// Env is the geometry the reducer clamps against.
type Env struct {
	// Canvas is the preview canvas pixel size.
	Canvas geometry.Size
	// Image is the natural size of the decoded image.
	Image  geometry.Size
	Config Config
}

// Reduce applies one event and returns the next state and session.
// Key events are not gestures and pass through unchanged.
func Reduce(st State, s Session, ev Event, env Env) (State, Session) {
	cfg := env.Config.withDefaults()

	switch ev.Type {
	case PointerDown:
		return pointerDown(st, s, ev)
	case PointerMove:
		return pointerMove(st, s, ev, env, cfg)
	case PointerUp, PointerCancel:
		return pointerUp(st, s, ev)
	case Wheel:
		return wheel(st, s, ev, env, cfg)
	}
	return st, s
}

func pointerDown(st State, s Session, ev Event) (State, Session) {
	p := ev.Point()
	if !p.Finite() {
		return st, s
	}
	if _, ok := s.contact(ev.Pointer); ok {
		return st, s
	}

	switch s.Active() {
	case 0:
		s = Session{
			Kind:          Pan,
			PanPointer:    ev.Pointer,
			Anchor:        p.Sub(st.Position),
			StartPosition: st.Position,
			StartScale:    st.Scale,
		}
		s.add(ev.Pointer, p)
	case 1:
		s.add(ev.Pointer, p)
		s.Kind = Pinch
		s.LastDistance = s.separation()
		s.StartPosition = st.Position
		s.StartScale = st.Scale
	}
	// A third simultaneous contact is ignored.
	return st, s
}

func pointerMove(st State, s Session, ev Event, env Env, cfg Config) (State, Session) {
	p := ev.Point()
	if !p.Finite() {
		return st, s
	}
	if _, ok := s.contact(ev.Pointer); !ok {
		return st, s
	}
	s.update(ev.Pointer, p)

	switch s.Kind {
	case Pan:
		if ev.Pointer != s.PanPointer {
			return st, s
		}
		st.Position = clampPosition(env, st.Scale, p.Sub(s.Anchor))

	case Pinch:
		d := s.separation()
		if !finite(d) {
			return st, s
		}
		if d == 0 || s.LastDistance == 0 {
			s.LastDistance = d
			return st, s
		}
		delta := (d - s.LastDistance) / cfg.Sensitivity
		s.LastDistance = d
		st = rescale(st, env, cfg, st.Scale+delta)
	}
	return st, s
}

func pointerUp(st State, s Session, ev Event) (State, Session) {
	if _, ok := s.contact(ev.Pointer); !ok {
		return st, s
	}
	// Lifting either finger of a pinch ends the gesture and forgets the
	// remaining contact. The next touch starts a fresh pan.
	return st, Session{}
}

func wheel(st State, s Session, ev Event, env Env, cfg Config) (State, Session) {
	if ev.DeltaY == 0 || math.IsNaN(ev.DeltaY) {
		return st, s
	}
	delta := cfg.WheelStep
	if ev.DeltaY > 0 {
		delta = -cfg.WheelStep
	}
	return rescale(st, env, cfg, st.Scale+delta), s
}

// rescale clamps the scale and re-clamps the position for the new draw size.
func rescale(st State, env Env, cfg Config, scale float64) State {
	st.Scale = ClampScale(scale, cfg)
	st.Position = clampPosition(env, st.Scale, st.Position)
	return st
}

// ClampScale limits scale to [cfg.MinScale, cfg.MaxScale] and snaps it to
// nine decimal places so repeated steps land on exact values.
func ClampScale(scale float64, cfg Config) float64 {
	cfg = cfg.withDefaults()
	if math.IsNaN(scale) {
		return 1.0
	}
	scale = math.Round(scale*1e9) / 1e9
	return math.Max(cfg.MinScale, math.Min(cfg.MaxScale, scale))
}

func clampPosition(env Env, scale float64, proposed geometry.Point) geometry.Point {
	draw := geometry.ComputeDrawRect(env.Canvas, env.Image, scale, geometry.Point{}).Size()
	return geometry.ClampPosition(env.Canvas, draw, proposed)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
