// event.go - Normalized input events fed to the reducer.
// Hosts translate their native mouse, touch and wheel events into these so the
// controller never touches a real display.
package gesture

import (
	"fmt"
	"strings"

	"github.com/xob0t/facetex/pkg/geometry"
)

// EventType identifies a normalized input event.
type EventType int

const (
	PointerDown EventType = iota + 1
	PointerMove
	PointerUp
	// PointerCancel reports a lost contact, e.g. the mouse leaving the canvas
	// or the platform cancelling a touch. It behaves like PointerUp.
	PointerCancel
	Wheel
	Key
)

var eventNames = map[EventType]string{
	PointerDown:   "pointerdown",
	PointerMove:   "pointermove",
	PointerUp:     "pointerup",
	PointerCancel: "pointercancel",
	Wheel:         "wheel",
	Key:           "key",
}

// String returns the lowercase wire name of the event type.
func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	s, ok := eventNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown event type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively, and the DOM aliases "mousedown", "mousemove",
// "mouseup" and "mouseleave" are accepted.
func (t *EventType) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	switch name {
	case "mousedown", "touchstart":
		*t = PointerDown
		return nil
	case "mousemove", "touchmove":
		*t = PointerMove
		return nil
	case "mouseup", "touchend":
		*t = PointerUp
		return nil
	case "mouseleave", "touchcancel":
		*t = PointerCancel
		return nil
	}
	for k, v := range eventNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", string(b))
}

// EscapeKey is the key that cancels a placement session.
const EscapeKey = "Escape"

// Event is one normalized input event. Coordinates are canvas-local pixels.
type Event struct {
	Type    EventType `json:"type"`
	Pointer int       `json:"pointer,omitempty"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	DeltaY  float64   `json:"deltaY,omitempty"`
	Key     string    `json:"key,omitempty"`
}

// Point returns the event's contact point.
func (e Event) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Down returns a PointerDown event for the given contact.
func Down(pointer int, x, y float64) Event {
	return Event{Type: PointerDown, Pointer: pointer, X: x, Y: y}
}

// Move returns a PointerMove event for the given contact.
func Move(pointer int, x, y float64) Event {
	return Event{Type: PointerMove, Pointer: pointer, X: x, Y: y}
}

// Up returns a PointerUp event for the given contact.
func Up(pointer int) Event {
	return Event{Type: PointerUp, Pointer: pointer}
}

// Cancel returns a PointerCancel event for the given contact.
func Cancel(pointer int) Event {
	return Event{Type: PointerCancel, Pointer: pointer}
}

// WheelBy returns a Wheel event. Positive deltaY scrolls down (zoom out).
func WheelBy(deltaY float64) Event {
	return Event{Type: Wheel, DeltaY: deltaY}
}

// KeyPress returns a Key event.
func KeyPress(key string) Event {
	return Event{Type: Key, Key: key}
}
