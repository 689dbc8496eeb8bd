package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/render"
	"github.com/xob0t/facetex/pkg/script"
)

var (
	replayScript   string
	replayImage    string
	replayPreview  string
	replayTexture  string
	replayVideo    string
	replayColor    string
	replayHeight   float64
	replayWidth    float64
	replayFont     string
	replayAnnotate bool
	replayDryRun   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded gesture events and write the results",
	Long: `Replay loads a script (script.json, or a .zip bundle holding script.json and
its photo), feeds its events through a placement session and writes the final
preview frame, the synthesized texture and an MJPEG AVI with one preview
frame per event.

An Escape key event cancels the session: frames up to the cancel are still
written, but no texture is produced. Flags override the script's values.`,
	Example: `  facetex replay --script script.json --preview preview.png --texture texture.png
  facetex replay --script replay.zip --video replay.avi --annotate
  facetex replay --script script.json --dry-run`,
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringVarP(&replayScript, "script", "s", "", "Script JSON or .zip bundle")
	f.StringVar(&replayImage, "image", "", "Photo (overrides the script)")
	f.StringVar(&replayPreview, "preview", "", "Final preview frame (.png or .bmp)")
	f.StringVar(&replayTexture, "texture", "", "Synthesized texture (.png or .bmp)")
	f.StringVar(&replayVideo, "video", "", "Preview frames as MJPEG AVI (.avi)")
	f.StringVar(&replayColor, "color", "", "Face color: hex or 'random'")
	f.Float64Var(&replayHeight, "height", geometry.DefaultFace.Height, "Face height (overrides the script)")
	f.Float64Var(&replayWidth, "width", geometry.DefaultFace.Width, "Face width (overrides the script)")
	f.StringVar(&replayFont, "font", "", "TTF font for the video readout")
	f.BoolVar(&replayAnnotate, "annotate", false, "Draw the scale/offset readout on video frames")
	f.BoolVar(&replayDryRun, "dry-run", false, "Validate and describe the script without replaying it")
	replayCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, cleanup, err := script.Load(replayScript)
	defer cleanup()
	if err != nil {
		return fmt.Errorf("load script: %w", err)
	}

	o := script.Overrides{
		Color:   replayColor,
		Image:   replayImage,
		Preview: replayPreview,
		Texture: replayTexture,
		Video:   replayVideo,
	}
	if cmd.Flags().Changed("height") || cmd.Flags().Changed("width") {
		face := s.Face
		if cmd.Flags().Changed("height") {
			face.Height = replayHeight
		}
		if cmd.Flags().Changed("width") {
			face.Width = replayWidth
		}
		o.Face = &face
	}
	script.Merge(s, o)
	if replayFont != "" {
		s.Video.Font = replayFont
	}
	if replayAnnotate {
		s.Video.Annotate = true
	}

	for _, w := range script.Validate(s) {
		log.Warn().Msg(w)
	}

	if replayDryRun {
		fmt.Print(script.Describe(s))
		return nil
	}
	if err := s.Face.Validate(); err != nil {
		return err
	}
	if s.Output.Preview == "" && s.Output.Texture == "" && s.Output.Video == "" {
		return fmt.Errorf("nothing to write: set --preview, --texture or --video")
	}

	opts := script.Options{Frames: s.Output.Video != ""}
	if s.Video.Annotate {
		opts.Annotator, err = render.NewAnnotator(s.Video.Font, render.DefaultFontSize)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Replaying: %s (%d events)\n", replayScript, len(s.Events))
	res, err := script.Run(cmd.Context(), s, opts)
	if err != nil {
		return err
	}

	if s.Output.Preview != "" {
		if res.Preview == nil {
			log.Warn().Msg("No preview frame to write")
		} else if err := generator.WriteFile(s.Output.Preview, res.Preview); err != nil {
			return err
		} else {
			fmt.Printf("Preview: %s\n", s.Output.Preview)
		}
	}

	if s.Output.Video != "" {
		if len(res.Frames) == 0 {
			log.Warn().Msg("No frames to write")
		} else if err := generator.WriteVideo(s.Output.Video, res.Frames, generator.VideoConfig{FPS: s.Video.FPS}); err != nil {
			return err
		} else {
			fmt.Printf("Video: %s (%d frames)\n", s.Output.Video, len(res.Frames))
		}
	}

	if res.Cancelled {
		fmt.Println("Session cancelled: no texture written")
		return nil
	}

	if s.Output.Texture != "" {
		if err := generator.WriteFile(s.Output.Texture, res.Texture); err != nil {
			return err
		}
		fmt.Printf("Texture: %s\n", s.Output.Texture)
	}

	out, err := json.Marshal(res.Placement)
	if err != nil {
		return err
	}
	fmt.Printf("Placement: %s\n", out)
	return nil
}
