package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xob0t/facetex/pkg/geometry"
	"github.com/xob0t/facetex/pkg/placement"
)

func photoPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		fw, err := mw.CreateFormFile("file", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func openSession(t *testing.T, h http.Handler, data []byte) sessionResponse {
	t.Helper()
	rec := serve(h, uploadRequest(t, "/api/sessions", data, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: status %d: %s", rec.Code, rec.Body)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("open: %v", err)
	}
	return resp
}

func postEvents(t *testing.T, h http.Handler, id, body string) sessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/events", strings.NewReader(body))
	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("events: status %d: %s", rec.Code, rec.Body)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("events: %v", err)
	}
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	s := New(Options{})
	h := s.Handler()

	opened := openSession(t, h, photoPNG(t, 40, 30))
	if opened.Canvas != (geometry.Size{W: 200, H: 600}) {
		t.Errorf("canvas = %+v, want 200x600", opened.Canvas)
	}
	if opened.State.Scale != 1 || opened.Color != strings.ToLower(geometry.DefaultColor) {
		t.Errorf("opened = %+v", opened)
	}

	got := postEvents(t, h, opened.ID, `[
		{"type":"wheel","deltaY":-1},
		{"type":"wheel","deltaY":-1},
		{"type":"pointerdown","pointer":1,"x":100,"y":100},
		{"type":"pointermove","pointer":1,"x":120,"y":90}
	]`)
	if got.Gesture != "pan" {
		t.Errorf("gesture = %v, want pan", got.Gesture)
	}
	postEvents(t, h, opened.ID, `[{"type":"pointerup","pointer":1}]`)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+opened.ID+"/preview", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("preview: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("preview decode: %v", err)
	}
	if img.Bounds().Size() != image.Pt(200, 600) {
		t.Errorf("preview size = %v", img.Bounds().Size())
	}

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/sessions/"+opened.ID+"/confirm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status %d: %s", rec.Code, rec.Body)
	}
	var p placement.Placement
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	want := placement.Placement{Position: geometry.Point{X: 20, Y: -10}, Scale: 1.2}
	if p != want {
		t.Errorf("placement = %+v, want %+v", p, want)
	}

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/sessions/"+opened.ID+"/confirm", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second confirm: status %d, want 404", rec.Code)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after confirm", s.Len())
	}
}

func TestEscapeRemovesSession(t *testing.T) {
	s := New(Options{})
	h := s.Handler()
	opened := openSession(t, h, photoPNG(t, 10, 10))

	got := postEvents(t, h, opened.ID, `[{"type":"key","key":"Escape"},{"type":"wheel","deltaY":-1}]`)
	if !got.Closed {
		t.Error("Escape did not close the session")
	}
	if got.State.Scale != 1 {
		t.Errorf("event after Escape applied: %+v", got.State)
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+opened.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d after Escape, want 404", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	s := New(Options{})
	h := s.Handler()
	opened := openSession(t, h, photoPNG(t, 10, 10))

	rec := serve(h, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+opened.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+opened.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rec.Code)
	}
}

func TestOpenValidation(t *testing.T) {
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)
	tests := []struct {
		name   string
		opts   Options
		data   []byte
		fields map[string]string
		want   int
	}{
		{"missing file", Options{}, nil, nil, http.StatusBadRequest},
		{"text file", Options{}, []byte("hello, world"), nil, http.StatusUnsupportedMediaType},
		{"too large", Options{MaxUpload: 64}, nil, nil, http.StatusRequestEntityTooLarge},
		{"bad height", Options{}, nil, map[string]string{"height": "tall"}, http.StatusBadRequest},
		{"negative width", Options{}, nil, map[string]string{"width": "-1"}, http.StatusBadRequest},
		{"bad color", Options{}, nil, map[string]string{"color": "#zzz"}, http.StatusBadRequest},
		{"undecodable", Options{}, corrupt, nil, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if data == nil && tt.name != "missing file" {
				data = photoPNG(t, 20, 20)
			}
			s := New(tt.opts)
			rec := serve(s.Handler(), uploadRequest(t, "/api/sessions", data, tt.fields))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if s.Len() != 0 {
				t.Errorf("session left open after failure")
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	s := New(Options{})
	h := s.Handler()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/not-a-uuid", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("bad id: status %d", rec.Code)
	}

	opened := openSession(t, h, photoPNG(t, 10, 10))
	for _, body := range []string{`{`, `[{"type":"hover"}]`} {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+opened.ID+"/events", strings.NewReader(body))
		if rec := serve(h, req); rec.Code != http.StatusBadRequest {
			t.Errorf("events %s: status %d, want 400", body, rec.Code)
		}
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+opened.ID+"/preview?format=gif", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("preview gif: status %d, want 400", rec.Code)
	}
}

func TestTexture(t *testing.T) {
	h := New(Options{}).Handler()
	photo := photoPNG(t, 40, 30)

	rec := serve(h, uploadRequest(t, "/api/texture", photo, map[string]string{
		"placement": `{"position":{"x":10,"y":-5},"scale":1.5}`,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(FallbackHeader) != "" {
		t.Error("unexpected fallback")
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != geometry.TextureSize(geometry.DefaultFace) {
		t.Errorf("texture size = %v", img.Bounds().Size())
	}

	rec = serve(h, uploadRequest(t, "/api/texture", photo, map[string]string{
		"format": "bmp", "height": "1", "width": "1",
	}))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/bmp" {
		t.Errorf("bmp: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = serve(h, uploadRequest(t, "/api/texture", photo, map[string]string{"placement": "{"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad placement: status %d", rec.Code)
	}
}

func TestTextureFallback(t *testing.T) {
	h := New(Options{}).Handler()
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)

	rec := serve(h, uploadRequest(t, "/api/texture", corrupt, map[string]string{"color": "#00ff00"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(FallbackHeader) != "true" {
		t.Error("fallback header missing")
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r != 0 || g != 0xffff || b != 0 {
		t.Errorf("fallback pixel = %v, want face color", img.At(5, 5))
	}
}

func TestExpireIdleSessions(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(Options{IdleTimeout: time.Minute})
	s.now = func() time.Time { return clock }
	h := s.Handler()

	stale := openSession(t, h, photoPNG(t, 10, 10))
	clock = clock.Add(50 * time.Second)
	fresh := openSession(t, h, photoPNG(t, 10, 10))
	clock = clock.Add(20 * time.Second)

	s.expire()
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+stale.ID, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("stale session status %d", rec.Code)
	}
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+fresh.ID, nil)); rec.Code != http.StatusOK {
		t.Errorf("fresh session status %d", rec.Code)
	}

	s.closeAll()
	if s.Len() != 0 {
		t.Errorf("Len = %d after closeAll", s.Len())
	}
}
