// parser.go - Script parsing, defaults and example generation.
package script

import (
	"encoding/json"
	"fmt"

	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
)

// Parse decodes a script and fills in defaults.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}
	applyDefaults(&s)
	return &s, nil
}

// applyDefaults sets the stock face, face color and frame rate.
func applyDefaults(s *Script) {
	if s.Face == (geometry.Face{}) {
		s.Face = geometry.DefaultFace
	}
	if s.Color == "" {
		s.Color = geometry.DefaultColor
	}
	if s.Video.FPS <= 0 {
		s.Video.FPS = generator.DefaultFPS
	}
}

// GetExampleJSON returns a sample script.json for facetex init. It pans the
// photo, pinches it larger and nudges it back with the wheel.
func GetExampleJSON() string {
	return `{
  "meta": {
    "name": "Sample replay",
    "description": "Drag right, pinch out, wheel back one notch"
  },
  "face": { "height": 3.0, "width": 1.0 },
  "color": "#87CEEB",
  "image": "photo.jpg",
  "events": [
    { "type": "pointerdown", "pointer": 1, "x": 100, "y": 300 },
    { "type": "pointermove", "pointer": 1, "x": 120, "y": 300 },
    { "type": "pointermove", "pointer": 1, "x": 140, "y": 290 },
    { "type": "pointerup", "pointer": 1 },
    { "type": "pointerdown", "pointer": 1, "x": 100, "y": 250 },
    { "type": "pointerdown", "pointer": 2, "x": 100, "y": 350 },
    { "type": "pointermove", "pointer": 2, "x": 100, "y": 390 },
    { "type": "pointermove", "pointer": 2, "x": 100, "y": 430 },
    { "type": "pointerup", "pointer": 2 },
    { "type": "pointerup", "pointer": 1 },
    { "type": "wheel", "deltaY": 100 }
  ],
  "output": {
    "preview": "preview.png",
    "texture": "texture.png",
    "video": "replay.avi"
  },
  "video": { "fps": 5, "annotate": true }
}`
}
