// Package server hosts placement sessions over HTTP.
//
// A client uploads a photo to open a session, streams pointer, wheel and key
// events at it, fetches preview PNGs while the user adjusts the placement and
// finally confirms (or deletes) the session. Textures are synthesized
// statelessly from a photo and a confirmed placement.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/gesture"
)

const (
	// DefaultMaxUpload is the largest accepted photo, matching the upload
	// control's 10 MiB limit.
	DefaultMaxUpload = 10 << 20
	// DefaultIdleTimeout is how long an untouched session survives.
	DefaultIdleTimeout = 15 * time.Minute
	// DefaultPort is the listen port for Run.
	DefaultPort = 8080

	// multipart framing allowance on top of the photo itself
	formOverhead = 1 << 20
	maxEventBody = 1 << 20
)

// Options configures a Server.
type Options struct {
	Port        int
	MaxUpload   int64
	IdleTimeout time.Duration
	Gesture     gesture.Config
}

func (o Options) withDefaults() Options {
	if o.Port <= 0 {
		o.Port = DefaultPort
	}
	if o.MaxUpload <= 0 {
		o.MaxUpload = DefaultMaxUpload
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	return o
}

// Server is the placement HTTP host.
type Server struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*entry

	// now is replaced in tests.
	now func() time.Time
}

// New returns a Server with no open sessions.
func New(opts Options) *Server {
	return &Server{
		opts:     opts.withDefaults(),
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/sessions", s.handleOpen)
	mux.HandleFunc("POST /api/sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleState)
	mux.HandleFunc("GET /api/sessions/{id}/preview", s.handlePreview)
	mux.HandleFunc("POST /api/sessions/{id}/confirm", s.handleConfirm)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleCancel)
	mux.HandleFunc("POST /api/texture", s.handleTexture)

	return withLogging(mux)
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully and cancels every open session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.sweep(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.opts.Port).Msg("Starting placement server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	return err
}

// sweep cancels idle sessions every interval until ctx is done.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.expire()
		}
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}
