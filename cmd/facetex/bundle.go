package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/pkg/script"
)

var (
	bundleScript string
	bundleImage  string
	bundleOutput string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Pack a script, its photo and font into one .zip",
	Long: `Bundle writes a Zstandard-compressed ZIP holding script.json, the photo and
the readout font (if any), so a replay can be shared as a single file and
replayed from any directory.`,
	Example: `  facetex bundle --script script.json -o replay.zip
  facetex bundle --script script.json --image other.jpg -o replay.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := script.Load(bundleScript)
		defer cleanup()
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
		script.Merge(s, script.Overrides{Image: bundleImage})

		if err := script.WriteBundle(bundleOutput, s); err != nil {
			return err
		}
		fmt.Printf("Done: %s\n", bundleOutput)
		return nil
	},
}

func init() {
	f := bundleCmd.Flags()
	f.StringVarP(&bundleScript, "script", "s", "", "Script JSON or .zip bundle")
	f.StringVar(&bundleImage, "image", "", "Photo (overrides the script)")
	f.StringVarP(&bundleOutput, "output", "o", "", "Output bundle (.zip)")
	bundleCmd.MarkFlagRequired("script")
	bundleCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(bundleCmd)
}
