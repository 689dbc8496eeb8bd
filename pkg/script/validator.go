// validator.go - Lint a replay script before running it.
package script

import (
	"fmt"
	"strings"

	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/gesture"
)

// Validate checks a script for mistakes that would make the replay do
// something other than its author intended. Returns warnings (never fatal
// errors); the reducer ignores the offending events at run time anyway.
func Validate(s *Script) []string {
	if s == nil {
		return nil
	}

	var warnings []string
	if s.Image == "" {
		warnings = append(warnings, "no image set: use the image field or --image")
	}
	if err := s.Face.Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v: the session will not open", err))
	}
	if _, err := generator.ParseRGBA(s.Color); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v: using default face color", err))
	}
	if len(s.Events) == 0 {
		warnings = append(warnings, "script has no events: the placement stays centred at scale 1.0")
	}
	if s.Output == (Output{}) {
		warnings = append(warnings, "no outputs configured: nothing will be written")
	}

	down := make(map[int]bool)
	for i, ev := range s.Events {
		switch ev.Type {
		case gesture.PointerDown:
			if down[ev.Pointer] {
				warnings = append(warnings, fmt.Sprintf("event %d: pointer %d is already down: ignored", i, ev.Pointer))
			} else if len(down) >= 2 {
				warnings = append(warnings, fmt.Sprintf("event %d: third contact %d: ignored", i, ev.Pointer))
			} else {
				down[ev.Pointer] = true
			}
		case gesture.PointerMove:
			if !down[ev.Pointer] {
				warnings = append(warnings, fmt.Sprintf("event %d: move for pointer %d which is not down: ignored", i, ev.Pointer))
			}
		case gesture.PointerUp, gesture.PointerCancel:
			// Lifting any tracked contact ends the whole gesture.
			if down[ev.Pointer] {
				clear(down)
			}
		case gesture.Wheel:
			if ev.DeltaY == 0 {
				warnings = append(warnings, fmt.Sprintf("event %d: wheel with zero deltaY: no-op", i))
			}
		case gesture.Key:
			if ev.Key == gesture.EscapeKey && i < len(s.Events)-1 {
				warnings = append(warnings, fmt.Sprintf("event %d: Escape cancels the session: %d later events ignored", i, len(s.Events)-1-i))
				return warnings
			}
			if ev.Key != gesture.EscapeKey {
				warnings = append(warnings, fmt.Sprintf("event %d: key %q has no effect", i, ev.Key))
			}
		}
	}

	return warnings
}

// Describe returns a human-readable summary of the script.
func Describe(s *Script) string {
	var b strings.Builder

	name := s.Meta.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "Script: %s\n", name)
	if s.Meta.Description != "" {
		b.WriteString(s.Meta.Description + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %-9s %g x %g (height x width)\n", "face:", s.Face.Height, s.Face.Width)
	fmt.Fprintf(&b, "  %-9s %s\n", "color:", s.Color)
	fmt.Fprintf(&b, "  %-9s %s\n", "image:", s.Image)

	counts := make(map[gesture.EventType]int)
	for _, ev := range s.Events {
		counts[ev.Type]++
	}
	fmt.Fprintf(&b, "  %-9s %d", "events:", len(s.Events))
	for _, t := range []gesture.EventType{gesture.PointerDown, gesture.PointerMove, gesture.PointerUp, gesture.PointerCancel, gesture.Wheel, gesture.Key} {
		if counts[t] > 0 {
			fmt.Fprintf(&b, " %s=%d", t, counts[t])
		}
	}
	b.WriteString("\n")

	for _, out := range []struct{ label, path string }{
		{"preview:", s.Output.Preview},
		{"texture:", s.Output.Texture},
		{"video:", s.Output.Video},
	} {
		if out.path != "" {
			fmt.Fprintf(&b, "  %-9s %s\n", out.label, out.path)
		}
	}
	return b.String()
}
