package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/placement"
	"github.com/xob0t/facetex/pkg/texture"
)

var (
	synthImage     string
	synthOutput    string
	synthX         float64
	synthY         float64
	synthScale     float64
	synthHeight    float64
	synthWidth     float64
	synthColor     string
	synthPlacement string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesize a texture from a photo and a placement",
	Long: `Synthesize renders the photo at the given placement into a texture bitmap
sized for the face (512 pixels wide, height from the face ratio), flipped for
bottom-up texture upload. A photo that cannot be decoded produces a texture
filled with the face color.

The placement is an offset from the canvas centre in preview pixels and a
scale in [0.5, 3.0]. --placement reads it from a JSON file instead, such as
the output of the server's confirm endpoint.`,
	Example: `  facetex synth --image photo.jpg --x 20 --y -10 --scale 1.2 -o texture.png
  facetex synth --image photo.jpg --placement placement.json --height 2 --width 1 -o texture.bmp`,
	RunE: runSynth,
}

func init() {
	f := synthCmd.Flags()
	f.StringVar(&synthImage, "image", "", "Photo to place (JPEG, PNG, GIF, BMP, TIFF or WebP)")
	f.StringVarP(&synthOutput, "output", "o", "", "Output texture (.png or .bmp)")
	f.Float64Var(&synthX, "x", 0, "Horizontal offset from the canvas centre, preview pixels")
	f.Float64Var(&synthY, "y", 0, "Vertical offset from the canvas centre, preview pixels")
	f.Float64Var(&synthScale, "scale", 1, "Scale multiplier")
	f.Float64Var(&synthHeight, "height", geometry.DefaultFace.Height, "Face height")
	f.Float64Var(&synthWidth, "width", geometry.DefaultFace.Width, "Face width")
	f.StringVar(&synthColor, "color", geometry.DefaultColor, "Face color for the fallback texture: hex or 'random'")
	f.StringVar(&synthPlacement, "placement", "", "Placement JSON file (overrides --x, --y and --scale)")
	synthCmd.MarkFlagRequired("image")
	synthCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	face := geometry.Face{Height: synthHeight, Width: synthWidth}
	if err := face.Validate(); err != nil {
		return err
	}
	faceColor, err := generator.ParseRGBA(synthColor)
	if err != nil {
		return err
	}
	if _, err := generator.LookupFormat(filepath.Ext(synthOutput)); err != nil {
		return err
	}

	p := placement.Placement{Position: geometry.Point{X: synthX, Y: synthY}, Scale: synthScale}
	if synthPlacement != "" {
		p, err = readPlacement(synthPlacement)
		if err != nil {
			return err
		}
	}
	p = p.Normalize()

	data, err := os.ReadFile(synthImage)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	img, fellBack := texture.SynthesizeOrFallback(data, p, face, faceColor)
	if err := generator.WriteFile(synthOutput, img); err != nil {
		return err
	}

	log.Info().
		Str("output", synthOutput).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Bool("fallback", fellBack).
		Msg("Texture written")
	fmt.Printf("Done: %s\n", synthOutput)
	return nil
}

func readPlacement(path string) (placement.Placement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return placement.Placement{}, fmt.Errorf("read placement: %w", err)
	}
	p := placement.Default
	if err := json.Unmarshal(data, &p); err != nil {
		return placement.Placement{}, fmt.Errorf("parse placement: %w", err)
	}
	return p, nil
}
