// facetex places photos on object faces and synthesizes the matching
// texture bitmaps.
//
// Usage:
//
//	facetex synth --image photo.jpg --x 20 --y -10 --scale 1.2 -o texture.png
//	facetex replay --script script.json --texture texture.png
//	facetex bundle --script script.json -o replay.zip
//	facetex serve [--port 8080]
//	facetex init
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/internal/logging"
)

var logLevelFlag string

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "facetex",
	Short: "Photo placement and texture synthesis for printed faces",
	Long: `facetex positions a photo inside a canvas shaped like an object's face and
reproduces that placement as a texture bitmap at texture resolution.

Placements come from an interactive session (the HTTP or WASM host), from a
replay script of recorded pointer, wheel and key events, or directly from
command-line flags.

Examples:
  facetex init
  facetex replay --script script.json --preview preview.png --texture texture.png
  facetex replay --script replay.zip --video replay.avi --annotate
  facetex synth --image photo.jpg --x 20 --y -10 --scale 1.2 -o texture.png
  facetex serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		if logLevelFlag != "" {
			logging.SetLevel(logLevelFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides "+logging.LevelEnv+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
