// runner.go - Replay engine: feeds a script's events through a placement
// session and collects the preview frames, the confirmed placement and the
// synthesized texture.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/placement"
	"github.com/xob0t/facetex/pkg/render"
	"github.com/xob0t/facetex/pkg/texture"
)

// Options controls what a replay produces.
type Options struct {
	// Frames records one preview frame before the first event and one
	// after each event while the session is open.
	Frames bool
	// Annotator, if set, draws the placement readout on every frame.
	Annotator *render.Annotator
}

// Result is the outcome of a replay.
type Result struct {
	// Placement is the confirmed placement; zero when Cancelled.
	Placement placement.Placement
	// Cancelled reports that an Escape event closed the session.
	Cancelled bool
	// Preview is the last frame rendered while the session was open.
	Preview *image.RGBA
	// Texture is the synthesized texture, or the flat face-color fallback
	// when the photo could not be decoded. Nil when Cancelled.
	Texture  *image.RGBA
	Fallback bool
	Frames   []image.Image
}

// Run replays s. A missing image file is an error; an undecodable one
// degrades to the flat face-color texture with no preview.
func Run(ctx context.Context, s *Script, opts Options) (*Result, error) {
	data, err := os.ReadFile(s.Image)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	faceColor, err := generator.ParseRGBA(s.Color)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid face color, using default")
		faceColor = generator.ParseHexRGBA(geometry.DefaultColor)
	}

	sess, err := placement.OpenSession(ctx, bytes.NewReader(data), s.Face, faceColor,
		placement.WithConfig(s.Gesture.Config()))
	if errors.Is(err, asset.ErrDecode) {
		log.Warn().Err(err).Str("image", s.Image).Msg("Image could not be decoded, using flat face color")
		return &Result{
			Placement: placement.Default,
			Texture:   texture.Fallback(s.Face, faceColor),
			Fallback:  true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	defer sess.Cancel()

	res := &Result{}
	frame := func() error {
		img, err := sess.NewPreview()
		if err != nil {
			return err
		}
		if opts.Annotator != nil {
			opts.Annotator.Annotate(img, sess.State())
		}
		res.Preview = img
		if opts.Frames {
			res.Frames = append(res.Frames, img)
		}
		return nil
	}

	if err := frame(); err != nil {
		return nil, err
	}
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sess.Dispatch(ev)
		if sess.Closed() {
			log.Debug().Int("event", i).Msg("Session closed by event")
			break
		}
		if err := frame(); err != nil {
			return nil, err
		}
	}

	if sess.Closed() {
		res.Cancelled = true
		return res, nil
	}

	p, err := sess.Confirm()
	if err != nil {
		return nil, err
	}
	res.Placement = p
	res.Texture, res.Fallback = texture.SynthesizeOrFallback(data, p, s.Face, faceColor)

	log.Info().
		Int("events", len(s.Events)).
		Float64("x", p.Position.X).
		Float64("y", p.Position.Y).
		Float64("scale", p.Scale).
		Msg("Replay confirmed")
	return res, nil
}
