package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/pkg/script"
)

var initOutput string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample replay script",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.WriteFile(initOutput, []byte(script.GetExampleJSON()), 0644); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
		fmt.Printf("Created: %s\n", initOutput)
		fmt.Printf("Run: facetex replay --script %s --image photo.jpg --texture texture.png\n", initOutput)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "script.json", "Output path for the sample script")
	rootCmd.AddCommand(initCmd)
}
