package exporter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestExporter(t *testing.T, path string, opts ...ExporterBuilderOption) Exporter {
	t.Helper()
	e, err := NewExporter(path, 24, append([]ExporterBuilderOption{WithWorkers(2)}, opts...)...)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// acTL returns the frame and loop counts from the animation control chunk.
func acTL(t *testing.T, data []byte) (frames, loops uint32) {
	t.Helper()
	i := bytes.Index(data, []byte("acTL"))
	if i < 0 {
		t.Fatal("no acTL chunk")
	}
	return binary.BigEndian.Uint32(data[i+4:]), binary.BigEndian.Uint32(data[i+8:])
}

func TestFrameDelay(t *testing.T) {
	tests := []struct {
		fps  float64
		want uint16
	}{
		{24, 4},
		{30, 3},
		{10, 10},
		{1000, 1},
		{0.1, 1000},
	}
	for _, tt := range tests {
		if got := FrameDelay(tt.fps); got != tt.want {
			t.Errorf("FrameDelay(%v) = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestNewExporterErrors(t *testing.T) {
	if _, err := NewExporter("", 24); err == nil {
		t.Fatal("empty path should fail")
	}
	if _, err := NewExporter("out.png", 0); err == nil {
		t.Fatal("zero fps should fail")
	}
}

func TestEncode(t *testing.T) {
	e := newTestExporter(t, "unused.png", WithLoopCount(2))
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	for _, c := range colors {
		if err := e.Add(solid(4, 3, c)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if e.Frames() != 3 {
		t.Fatalf("Frames = %d, want 3", e.Frames())
	}
	if e.Delay() != 4 {
		t.Fatalf("Delay = %d, want 4", e.Delay())
	}

	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	frames, loops := acTL(t, buf.Bytes())
	if frames != 3 || loops != 2 {
		t.Fatalf("acTL = (%d frames, %d loops), want (3, 2)", frames, loops)
	}

	// the default image is the first frame
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Fatalf("first frame pixel = (%d, %d, %d), want red", r, g, b)
	}
}

func TestAddNormalizesOrigin(t *testing.T) {
	e := newTestExporter(t, "unused.png")
	big := solid(8, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	sub := big.SubImage(image.Rect(2, 2, 6, 6)).(*image.RGBA)

	if err := e.Add(sub); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v, want origin-based 4x4", img.Bounds())
	}
}

func TestAddErrors(t *testing.T) {
	e := newTestExporter(t, "unused.png")

	if err := e.Add(nil); err == nil {
		t.Fatal("nil frame should fail")
	}
	if err := e.Encode(&bytes.Buffer{}); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("Encode with no frames = %v, want ErrNoFrames", err)
	}
	if err := e.Add(solid(4, 4, color.RGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := e.Add(solid(5, 4, color.RGBA{A: 255})); err == nil {
		t.Fatal("mismatched bounds should fail")
	}
	if e.Frames() != 1 {
		t.Fatalf("Frames = %d, want 1", e.Frames())
	}

	e.Close()
	e.Close()
	if err := e.Add(solid(4, 4, color.RGBA{A: 255})); !errors.Is(err, ErrClosed) {
		t.Fatalf("Add after Close = %v, want ErrClosed", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.png")
	e := newTestExporter(t, path)
	for i := range 5 {
		if err := e.Add(solid(2, 2, color.RGBA{R: uint8(i * 50), A: 255})); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if frames, loops := acTL(t, data); frames != 5 || loops != 0 {
		t.Fatalf("acTL = (%d, %d), want (5, 0)", frames, loops)
	}

	bad := newTestExporter(t, filepath.Join(t.TempDir(), "missing", "dir", "x.png"))
	if err := bad.Add(solid(2, 2, color.RGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := bad.Save(); err == nil {
		t.Fatal("Save into a missing directory should fail")
	}
}
