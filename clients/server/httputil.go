package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/generator"
	"github.com/xob0t/facetex/pkg/geometry"
)

// allowedTypes are the sniffed content types accepted for photo uploads.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// requestError carries the HTTP status a handler should answer with.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func requestErrorf(status int, format string, args ...any) error {
	return &requestError{status: status, msg: fmt.Sprintf(format, args...)}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write JSON response")
	}
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps err to a status: requestError carries its own, unknown
// sessions are 404 and everything else is 500.
func respondErr(w http.ResponseWriter, err error) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		httpError(w, re.status, re.msg)
	case errors.Is(err, errUnknownSession):
		httpError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		httpError(w, http.StatusInternalServerError, "internal error")
	}
}

// upload is a validated photo upload with its face and color form fields.
type upload struct {
	data  []byte
	face  geometry.Face
	color color.RGBA
}

// readUpload parses a multipart photo upload. The "file" part must sniff as
// JPEG or PNG and be at most MaxUpload bytes. "height" and "width" default
// to the stock face and "color" to the default face color.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload+formOverhead)
	if err := r.ParseMultipartForm(s.opts.MaxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, requestErrorf(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", s.opts.MaxUpload)
		}
		return nil, requestErrorf(http.StatusBadRequest, "invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, requestErrorf(http.StatusBadRequest, "missing file")
	}
	defer file.Close()
	if header.Size > s.opts.MaxUpload {
		return nil, requestErrorf(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", s.opts.MaxUpload)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxUpload {
		return nil, requestErrorf(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", s.opts.MaxUpload)
	}
	if ct := http.DetectContentType(data); !allowedTypes[ct] {
		return nil, requestErrorf(http.StatusUnsupportedMediaType, "unsupported file type %q: use JPEG or PNG", ct)
	}

	face, err := parseFace(r.FormValue("height"), r.FormValue("width"))
	if err != nil {
		return nil, requestErrorf(http.StatusBadRequest, "%v", err)
	}

	colorName := r.FormValue("color")
	if colorName == "" {
		colorName = geometry.DefaultColor
	}
	c, err := generator.ParseRGBA(colorName)
	if err != nil {
		return nil, requestErrorf(http.StatusBadRequest, "%v", err)
	}

	return &upload{data: data, face: face, color: c}, nil
}

func parseFace(height, width string) (geometry.Face, error) {
	face := geometry.DefaultFace
	if height != "" {
		v, err := strconv.ParseFloat(height, 64)
		if err != nil {
			return face, fmt.Errorf("invalid height %q", height)
		}
		face.Height = v
	}
	if width != "" {
		v, err := strconv.ParseFloat(width, 64)
		if err != nil {
			return face, fmt.Errorf("invalid width %q", width)
		}
		face.Width = v
	}
	return face, face.Validate()
}
