// avi.go - Pure Go AVI writer using Motion JPEG (MJPEG) frames.
// Each frame is JPEG-encoded on its own, so frames may differ in content and
// compressed size; all frames must share the same dimensions.
package generator

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
)

// Video defaults.
const (
	DefaultFPS         = 15
	DefaultJPEGQuality = 90
)

// VideoConfig holds parameters for AVI output.
type VideoConfig struct {
	FPS     int // Frames per second (default: 15)
	Quality int // JPEG quality 1-100 (default: 90)
}

func (c VideoConfig) withDefaults() VideoConfig {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = DefaultJPEGQuality
	}
	return c
}

// ErrNoFrames is returned when a video has no frames.
var ErrNoFrames = errors.New("video has no frames")

// WriteVideo writes frames to an AVI file at output.
func WriteVideo(output string, frames []image.Image, cfg VideoConfig) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := EncodeVideo(f, frames, cfg); err != nil {
		return err
	}
	return f.Sync()
}

// EncodeVideo writes frames to w as an MJPEG AVI.
func EncodeVideo(w io.Writer, frames []image.Image, cfg VideoConfig) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	cfg = cfg.withDefaults()

	size := frames[0].Bounds().Size()
	chunks := make([][]byte, len(frames))
	var maxChunk uint32
	for i, img := range frames {
		if img.Bounds().Size() != size {
			return fmt.Errorf("frame %d is %v, want %v", i, img.Bounds().Size(), size)
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: cfg.Quality}); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
		chunks[i] = buf.Bytes()
		maxChunk = max(maxChunk, uint32(len(chunks[i])))
	}

	width := uint32(size.X)
	height := uint32(size.Y)
	fps := uint32(cfg.FPS)
	totalFrames := uint32(len(frames))

	// movi holds "movi" plus one "00dc" chunk per frame, each padded to an
	// even size.
	moviSize := uint32(4)
	for _, c := range chunks {
		moviSize += 8 + padded(uint32(len(c)))
	}
	idx1Size := 8 + totalFrames*16
	hdrlSize := uint32(4 + 64 + 124) // "hdrl" + avih + strl
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	bw := bufio.NewWriter(w)
	aw := &aviWriter{w: bw}

	// === RIFF Header ===
	aw.fourCC("RIFF")
	aw.u32(fileSize)
	aw.fourCC("AVI ")

	// === hdrl LIST ===
	aw.fourCC("LIST")
	aw.u32(hdrlSize)
	aw.fourCC("hdrl")

	// === avih (Main AVI Header) ===
	aw.fourCC("avih")
	aw.u32(56)
	aw.u32(1000000 / fps) // microseconds per frame
	aw.u32(maxChunk * fps)
	aw.u32(0)    // padding granularity
	aw.u32(0x10) // flags: AVIF_HASINDEX
	aw.u32(totalFrames)
	aw.u32(0) // initial frames
	aw.u32(1) // streams
	aw.u32(maxChunk)
	aw.u32(width)
	aw.u32(height)
	aw.u32(0) // reserved
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// === strl LIST ===
	aw.fourCC("LIST")
	aw.u32(116) // "strl" + strh(64) + strf(48)
	aw.fourCC("strl")

	// === strh (Stream Header) ===
	aw.fourCC("strh")
	aw.u32(56)
	aw.fourCC("vids")
	aw.fourCC("MJPG")
	aw.u32(0) // flags
	aw.u16(0) // priority
	aw.u16(0) // language
	aw.u32(0) // initial frames
	aw.u32(1) // scale
	aw.u32(fps)
	aw.u32(0) // start
	aw.u32(totalFrames)
	aw.u32(maxChunk)
	aw.u32(0) // quality
	aw.u32(0) // sample size
	aw.u16(0) // left
	aw.u16(0) // top
	aw.u16(uint16(width))
	aw.u16(uint16(height))

	// === strf (BITMAPINFOHEADER) ===
	aw.fourCC("strf")
	aw.u32(40)
	aw.u32(40)
	aw.u32(width)
	aw.u32(height)
	aw.u16(1)  // planes
	aw.u16(24) // bit count
	aw.fourCC("MJPG")
	aw.u32(width * height * 3)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// === movi LIST ===
	aw.fourCC("LIST")
	aw.u32(moviSize)
	aw.fourCC("movi")
	for _, c := range chunks {
		aw.fourCC("00dc")
		aw.u32(uint32(len(c)))
		aw.write(c)
		if len(c)%2 != 0 {
			aw.write([]byte{0})
		}
	}

	// === idx1 ===
	aw.fourCC("idx1")
	aw.u32(totalFrames * 16)
	offset := uint32(4) // from the start of "movi"
	for _, c := range chunks {
		aw.fourCC("00dc")
		aw.u32(0x10) // AVIIF_KEYFRAME
		aw.u32(offset)
		aw.u32(uint32(len(c)))
		offset += 8 + padded(uint32(len(c)))
	}

	if aw.err != nil {
		return fmt.Errorf("write AVI: %w", aw.err)
	}
	return bw.Flush()
}

func padded(n uint32) uint32 {
	return n + n%2
}

// aviWriter writes little-endian RIFF fields and keeps the first error.
type aviWriter struct {
	w   io.Writer
	err error
}

func (a *aviWriter) write(b []byte) {
	if a.err != nil {
		return
	}
	_, a.err = a.w.Write(b)
}

func (a *aviWriter) fourCC(s string) {
	a.write([]byte(s))
}

func (a *aviWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.write(b[:])
}

func (a *aviWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	a.write(b[:])
}
