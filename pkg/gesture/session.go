// session.go - Gesture session: the single in-progress pointer interaction.
package gesture

import (
	"math"

	"github.com/xob0t/facetex/pkg/geometry"
)

// Kind is the kind of gesture in progress.
type Kind int

const (
	None Kind = iota
	Pan
	Pinch
)

// String returns the gesture kind name.
func (k Kind) String() string {
	switch k {
	case Pan:
		return "pan"
	case Pinch:
		return "pinch"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type contact struct {
	id     int
	point  geometry.Point
	active bool
}

// Session is the state of one continuous pointer interaction. The zero value
// is the idle session (Kind None, no contacts). Session is a value type; the
// reducer never shares contact storage between the session it receives and
// the one it returns.
type Session struct {
	Kind Kind `json:"kind"`

	// Anchor is contact - position at pan start; PanPointer owns the pan.
	Anchor     geometry.Point `json:"anchor"`
	PanPointer int            `json:"panPointer"`

	// LastDistance is the last seen separation of the two pinch contacts.
	LastDistance float64 `json:"lastDistance"`

	// Placement at the moment the gesture began.
	StartPosition geometry.Point `json:"startPosition"`
	StartScale    float64        `json:"startScale"`

	contacts [2]contact
}

// Active returns the number of tracked contacts.
func (s Session) Active() int {
	n := 0
	for _, c := range s.contacts {
		if c.active {
			n++
		}
	}
	return n
}

func (s Session) contact(id int) (geometry.Point, bool) {
	for _, c := range s.contacts {
		if c.active && c.id == id {
			return c.point, true
		}
	}
	return geometry.Point{}, false
}

func (s *Session) add(id int, p geometry.Point) {
	for i := range s.contacts {
		if !s.contacts[i].active {
			s.contacts[i] = contact{id: id, point: p, active: true}
			return
		}
	}
}

func (s *Session) update(id int, p geometry.Point) {
	for i := range s.contacts {
		if s.contacts[i].active && s.contacts[i].id == id {
			s.contacts[i].point = p
			return
		}
	}
}

// separation is the euclidean distance between the two contacts, or 0 when
// fewer than two are tracked.
func (s Session) separation() float64 {
	if s.Active() < 2 {
		return 0
	}
	a, b := s.contacts[0].point, s.contacts[1].point
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
