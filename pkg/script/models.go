// Package script provides JSON replay scripts: a photo, a face and an
// ordered stream of gesture events that headless hosts feed through a
// placement session.
package script

import (
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
)

// ── Script types ──

// Script is the top-level structure of a replay script (script.json).
type Script struct {
	Meta    Meta            `json:"meta"`
	Face    geometry.Face   `json:"face"`
	Color   string          `json:"color"` // "#rrggbb", "#rgb" or "random"
	Image   string          `json:"image"` // path, resolved against the script's directory
	Gesture GestureTuning   `json:"gesture"`
	Events  []gesture.Event `json:"events"`
	Output  Output          `json:"output"`
	Video   Video           `json:"video"`
}

// Meta holds script metadata.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GestureTuning overrides the gesture defaults. Zero fields keep them.
type GestureTuning struct {
	Sensitivity float64 `json:"sensitivity,omitempty"`
	WheelStep   float64 `json:"wheelStep,omitempty"`
}

// Config converts the tuning to a gesture.Config.
func (g GestureTuning) Config() gesture.Config {
	return gesture.Config{Sensitivity: g.Sensitivity, WheelStep: g.WheelStep}
}

// Output names default output files. Command-line flags override them.
type Output struct {
	Preview string `json:"preview,omitempty"` // final preview frame, .png or .bmp
	Texture string `json:"texture,omitempty"` // synthesized texture, .png or .bmp
	Video   string `json:"video,omitempty"`   // one preview frame per event, .avi
}

// Video configures the replay video.
type Video struct {
	FPS      int    `json:"fps,omitempty"`
	Annotate bool   `json:"annotate,omitempty"` // draw the scale/offset readout
	Font     string `json:"font,omitempty"`     // custom TTF for the readout
}

// Overrides are values supplied outside the script file (command-line
// flags). Empty fields leave the script unchanged.
type Overrides struct {
	Face    *geometry.Face
	Color   string
	Image   string
	Preview string
	Texture string
	Video   string
}
