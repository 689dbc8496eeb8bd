//go:build js && wasm

// facetex WASM: in-browser placement sessions.
// Compiled with: GOOS=js GOARCH=wasm go build -o facetex.wasm ./clients/wasm/
//
// The page owns the canvas and the DOM listeners; it forwards normalized
// events to goDispatch and paints whatever goPreview or goPreviewPixels
// returns.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"syscall/js"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/internal/logging"
	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
	"github.com/xob0t/facetex/pkg/placement"
	"github.com/xob0t/facetex/pkg/texture"
)

// One session per page.
var (
	mu    sync.Mutex
	sess  *placement.Session
	photo []byte
)

func main() {
	logging.Init()
	log.Info().Msg("facetex WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goOpenSession", js.FuncOf(openSession))
	js.Global().Set("goDispatch", js.FuncOf(dispatch))
	js.Global().Set("goSetFaceColor", js.FuncOf(setFaceColor))
	js.Global().Set("goPreview", js.FuncOf(preview))
	js.Global().Set("goPreviewPixels", js.FuncOf(previewPixels))
	js.Global().Set("goConfirm", js.FuncOf(confirm))
	js.Global().Set("goCancel", js.FuncOf(cancel))
	js.Global().Set("goSynthesize", js.FuncOf(synthesize))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

func jsonValue(v any) js.Value {
	b, err := json.Marshal(v)
	if err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(string(b))
}

func faceArgs(h, w js.Value) geometry.Face {
	face := geometry.DefaultFace
	if h.Type() == js.TypeNumber {
		face.Height = h.Float()
	}
	if w.Type() == js.TypeNumber {
		face.Width = w.Float()
	}
	return face
}

type stateResponse struct {
	Canvas  geometry.Size   `json:"canvas"`
	State   placement.State `json:"state"`
	Gesture string          `json:"gesture"`
	Closed  bool            `json:"closed"`
}

func currentState() js.Value {
	return jsonValue(stateResponse{
		Canvas:  sess.Canvas(),
		State:   sess.State(),
		Gesture: sess.Gesture().Kind.String(),
		Closed:  sess.Closed(),
	})
}

// goOpenSession(base64Photo, height, width, color) opens a session,
// cancelling any previous one. Returns the state JSON.
func openSession(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return errorValue("need base64Photo, height, width, color")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	colorName := args[3].String()
	if colorName == "" {
		colorName = geometry.DefaultColor
	}
	c, err := generator.ParseRGBA(colorName)
	if err != nil {
		return errorValue("%v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	// Decode synchronously: callbacks run on the JS event loop.
	a, err := asset.DecodeBytes(data)
	if err != nil {
		return errorValue("%v", err)
	}
	next, err := placement.NewSession(a, faceArgs(args[1], args[2]), c)
	if err != nil {
		return errorValue("%v", err)
	}
	if sess != nil {
		sess.Cancel()
	}
	sess, photo = next, data
	return currentState()
}

// goDispatch(eventsJSON) applies one event object or an array of them.
func dispatch(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need eventsJSON")
	}
	raw := strings.TrimSpace(args[0].String())
	var events []gesture.Event
	if strings.HasPrefix(raw, "{") {
		var ev gesture.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return errorValue("parse event: %v", err)
		}
		events = append(events, ev)
	} else if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return errorValue("parse events: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if sess == nil {
		return errorValue("no session")
	}
	sess.DispatchAll(events)
	return currentState()
}

// goSetFaceColor(color) recolours the preview background.
func setFaceColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need color")
	}
	c, err := generator.ParseRGBA(args[0].String())
	if err != nil {
		return errorValue("%v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if sess == nil {
		return errorValue("no session")
	}
	sess.SetFaceColor(c)
	return js.ValueOf("ok")
}

// goPreview() renders the current frame and returns it as base64 PNG.
func preview(this js.Value, args []js.Value) any {
	mu.Lock()
	defer mu.Unlock()
	if sess == nil {
		return errorValue("no session")
	}
	img, err := sess.NewPreview()
	if err != nil {
		return errorValue("%v", err)
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, ".png", img); err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goPreviewPixels(uint8ClampedArray) renders the current frame straight
// into an ImageData buffer of the canvas size. Returns the bytes copied.
func previewPixels(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need pixel buffer")
	}
	mu.Lock()
	defer mu.Unlock()
	if sess == nil {
		return errorValue("no session")
	}
	img, err := sess.NewPreview()
	if err != nil {
		return errorValue("%v", err)
	}
	if args[0].Length() != len(img.Pix) {
		return errorValue("buffer holds %d bytes, frame needs %d", args[0].Length(), len(img.Pix))
	}
	return js.ValueOf(js.CopyBytesToJS(args[0], img.Pix))
}

// goConfirm() closes the session and returns the placement JSON.
func confirm(this js.Value, args []js.Value) any {
	mu.Lock()
	defer mu.Unlock()
	if sess == nil {
		return errorValue("no session")
	}
	p, err := sess.Confirm()
	if err != nil {
		return errorValue("%v", err)
	}
	return jsonValue(p)
}

// goCancel() discards the session.
func cancel(this js.Value, args []js.Value) any {
	mu.Lock()
	defer mu.Unlock()
	if sess != nil {
		sess.Cancel()
		sess, photo = nil, nil
	}
	return js.ValueOf("ok")
}

// goSynthesize(base64Photo, placementJSON, height, width, color, format)
// returns the texture as base64 in the given format (png or bmp). An empty
// photo argument reuses the photo of the last opened session. Undecodable
// photos produce the flat face-color texture.
func synthesize(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return errorValue("need base64Photo, placementJSON, height, width, color, format")
	}

	var data []byte
	if b64 := args[0].String(); b64 != "" {
		var err error
		if data, err = base64.StdEncoding.DecodeString(b64); err != nil {
			return errorValue("invalid base64: %v", err)
		}
	} else {
		mu.Lock()
		data = photo
		mu.Unlock()
	}

	p := placement.Default
	if raw := args[1].String(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return errorValue("parse placement: %v", err)
		}
	}

	face := faceArgs(args[2], args[3])
	if err := face.Validate(); err != nil {
		return errorValue("%v", err)
	}
	colorName := args[4].String()
	if colorName == "" {
		colorName = geometry.DefaultColor
	}
	c, err := generator.ParseRGBA(colorName)
	if err != nil {
		return errorValue("%v", err)
	}
	format := args[5].String()
	if format == "" {
		format = "png"
	}

	img, fellBack := texture.SynthesizeOrFallback(data, p.Normalize(), face, c)
	if fellBack {
		log.Warn().Msg("Texture fell back to flat face color")
	}

	var buf bytes.Buffer
	if err := generator.Encode(&buf, format, img); err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}
