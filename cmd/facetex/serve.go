package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xob0t/facetex/clients/server"
	"github.com/xob0t/facetex/pkg/gesture"
)

var (
	servePort        int
	serveMaxUploadMB int
	serveIdle        time.Duration
	serveSensitivity float64
	serveWheelStep   float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the placement session HTTP API",
	Long: `Serve hosts placement sessions over HTTP:

  POST   /api/sessions                 open a session (multipart: file, height, width, color)
  GET    /api/sessions/{id}            session state
  POST   /api/sessions/{id}/events     apply a JSON array of events
  GET    /api/sessions/{id}/preview    current frame (?format=png|bmp)
  POST   /api/sessions/{id}/confirm    confirm and return the placement
  DELETE /api/sessions/{id}            cancel
  POST   /api/texture                  synthesize a texture (multipart: file, placement, height, width, color, format)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveMaxUploadMB <= 0 {
			return fmt.Errorf("--max-upload must be positive")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("\n  facetex API: http://localhost:%d/api/health\n\n", servePort)
		srv := server.New(server.Options{
			Port:        servePort,
			MaxUpload:   int64(serveMaxUploadMB) << 20,
			IdleTimeout: serveIdle,
			Gesture:     gesture.Config{Sensitivity: serveSensitivity, WheelStep: serveWheelStep},
		})
		return srv.Run(ctx)
	},
}

func init() {
	f := serveCmd.Flags()
	f.IntVarP(&servePort, "port", "p", server.DefaultPort, "Listen port")
	f.IntVar(&serveMaxUploadMB, "max-upload", server.DefaultMaxUpload>>20, "Largest accepted photo in MiB")
	f.DurationVar(&serveIdle, "idle-timeout", server.DefaultIdleTimeout, "Cancel sessions idle for this long")
	f.Float64Var(&serveSensitivity, "sensitivity", gesture.DefaultSensitivity, "Pinch pixels per unit of scale")
	f.Float64Var(&serveWheelStep, "wheel-step", gesture.DefaultWheelStep, "Scale change per wheel notch")
	rootCmd.AddCommand(serveCmd)
}
