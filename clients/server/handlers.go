package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/asset"
	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/gesture"
	"github.com/xob0t/facetex/pkg/placement"
	"github.com/xob0t/facetex/pkg/texture"
)

// FallbackHeader is set to "true" on texture responses that fell back to
// the flat face color because the photo could not be decoded.
const FallbackHeader = "X-Texture-Fallback"

type sessionResponse struct {
	ID      string          `json:"id"`
	Canvas  geometry.Size   `json:"canvas"`
	Face    geometry.Face   `json:"face"`
	Color   string          `json:"color"`
	State   placement.State `json:"state"`
	Gesture string          `json:"gesture"`
	Closed  bool            `json:"closed,omitempty"`
}

func describe(id string, sess *placement.Session) sessionResponse {
	return sessionResponse{
		ID:      id,
		Canvas:  sess.Canvas(),
		Face:    sess.Face(),
		Color:   generator.HexString(sess.FaceColor()),
		State:   sess.State(),
		Gesture: sess.Gesture().Kind.String(),
		Closed:  sess.Closed(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Len()})
}

// POST /api/sessions
// Multipart: file, height, width, color.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		respondErr(w, err)
		return
	}

	sess, err := placement.OpenSession(r.Context(), bytes.NewReader(up.data), up.face, up.color,
		placement.WithConfig(s.opts.Gesture))
	if err != nil {
		if errors.Is(err, asset.ErrDecode) {
			httpError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondErr(w, err)
		return
	}

	id := s.add(sess)
	log.Info().Str("session", id).Int("bytes", len(up.data)).Msg("Placement session opened")
	respondJSON(w, http.StatusCreated, describe(id, sess))
}

// GET /api/sessions/{id}
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := s.get(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	defer e.mu.Unlock()
	respondJSON(w, http.StatusOK, describe(id, e.sess))
}

// POST /api/sessions/{id}/events
// Body: JSON array of events, applied in order.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var events []gesture.Event
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBody)
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		httpError(w, http.StatusBadRequest, "invalid events: "+err.Error())
		return
	}

	id := r.PathValue("id")
	e, err := s.get(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	defer e.mu.Unlock()

	e.sess.DispatchAll(events)
	if e.sess.Closed() {
		s.drop(id)
		log.Info().Str("session", id).Msg("Placement session cancelled by key")
	}
	respondJSON(w, http.StatusOK, describe(id, e.sess))
}

// GET /api/sessions/{id}/preview[?format=png|bmp]
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	f, err := lookupFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondErr(w, err)
		return
	}

	e, err := s.get(r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	img, err := e.sess.NewPreview()
	e.mu.Unlock()
	if err != nil {
		respondErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf, img); err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// POST /api/sessions/{id}/confirm
// Responds with the confirmed placement; the session is removed.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := s.take(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	defer e.mu.Unlock()

	p, err := e.sess.Confirm()
	if err != nil {
		httpError(w, http.StatusConflict, err.Error())
		return
	}
	log.Info().
		Str("session", id).
		Float64("x", p.Position.X).
		Float64("y", p.Position.Y).
		Float64("scale", p.Scale).
		Msg("Placement confirmed")
	respondJSON(w, http.StatusOK, p)
}

// DELETE /api/sessions/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := s.take(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	e.sess.Cancel()
	e.mu.Unlock()

	log.Info().Str("session", id).Msg("Placement session cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/texture
// Multipart: file, placement (JSON), height, width, color, format.
func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		respondErr(w, err)
		return
	}
	f, err := lookupFormat(r.FormValue("format"))
	if err != nil {
		respondErr(w, err)
		return
	}

	p := placement.Default
	if raw := r.FormValue("placement"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			httpError(w, http.StatusBadRequest, "invalid placement: "+err.Error())
			return
		}
	}

	img, fellBack := texture.SynthesizeOrFallback(up.data, p.Normalize(), up.face, up.color)

	var buf bytes.Buffer
	if err := f.Encode(&buf, img); err != nil {
		respondErr(w, err)
		return
	}
	if fellBack {
		w.Header().Set(FallbackHeader, "true")
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="texture`+f.Ext+`"`)
	w.Write(buf.Bytes())
}

func lookupFormat(name string) (generator.Format, error) {
	if name == "" {
		name = "png"
	}
	f, err := generator.LookupFormat(name)
	if err != nil {
		return f, requestErrorf(http.StatusBadRequest, "%v", err)
	}
	return f, nil
}
