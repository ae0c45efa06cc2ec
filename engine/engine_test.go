package engine

import (
	"errors"
	"image"
	"io"
	"math"
	"testing"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer"
)

type call struct {
	kind          string
	width, height int
	ratio         float64
	playhead, t   float64
}

type fakeDrawable struct {
	calls     []call
	unloads   int
	renderErr error
	resizeErr error
	panicAt   int
	renders   int
}

func (f *fakeDrawable) Resize(width, height int, ratio float64) error {
	f.calls = append(f.calls, call{kind: "resize", width: width, height: height, ratio: ratio})
	return f.resizeErr
}

func (f *fakeDrawable) Render(playhead, t float64) error {
	f.renders++
	if f.panicAt > 0 && f.renders == f.panicAt {
		panic("device lost")
	}
	f.calls = append(f.calls, call{kind: "render", playhead: playhead, t: t})
	return f.renderErr
}

func (f *fakeDrawable) Unload() { f.unloads++ }

func (f *fakeDrawable) renderCalls() []call {
	var out []call
	for _, c := range f.calls {
		if c.kind == "render" {
			out = append(out, c)
		}
	}
	return out
}

type capturingDrawable struct {
	fakeDrawable
	captures int
}

func (c *capturingDrawable) Capture() (*image.RGBA, error) {
	c.captures++
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

type fakeExporter struct {
	added  int
	saves  int
	closes int
}

func (f *fakeExporter) Add(*image.RGBA) error    { f.added++; return nil }
func (f *fakeExporter) Frames() int              { return f.added }
func (f *fakeExporter) Path() string             { return "fake.png" }
func (f *fakeExporter) Delay() uint16            { return 4 }
func (f *fakeExporter) Encode(w io.Writer) error { return nil }
func (f *fakeExporter) Save() error              { f.saves++; return nil }
func (f *fakeExporter) Close()                   { f.closes++ }

func mustEngine(t *testing.T, opts ...EngineBuilderOption) Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Dimensions != [2]int{512, 512} || s.FPS != 24 || s.Duration != 4 || !s.Animate || !s.Attributes.Antialias || s.PixelRatio != 1 {
		t.Fatalf("DefaultSettings = %+v", s)
	}
	if s.TotalFrames() != 96 {
		t.Fatalf("TotalFrames = %d, want 96", s.TotalFrames())
	}
}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		fps, duration float64
		want          int
	}{
		{24, 4, 96},
		{30, 2.5, 75},
		{24, 1.01, 24},
		{0.1, 1, 1},
	}
	for _, tt := range tests {
		s := Settings{FPS: tt.fps, Duration: tt.duration}
		if got := s.TotalFrames(); got != tt.want {
			t.Errorf("TotalFrames(%v fps, %v s) = %d, want %d", tt.fps, tt.duration, got, tt.want)
		}
	}
}

func TestFrameTime(t *testing.T) {
	s := DefaultSettings()
	s.FPS, s.Duration = 4, 2

	tests := []struct {
		frame        uint64
		wantPlayhead float64
		wantTime     float64
	}{
		{0, 0, 0},
		{1, 0.125, 0.25},
		{4, 0.5, 1},
		{7, 0.875, 1.75},
		{8, 0, 0},
		{9, 0.125, 0.25},
	}
	for _, tt := range tests {
		p, tm := s.FrameTime(tt.frame)
		if math.Abs(p-tt.wantPlayhead) > 1e-12 || math.Abs(tm-tt.wantTime) > 1e-12 {
			t.Errorf("FrameTime(%d) = (%v, %v), want (%v, %v)", tt.frame, p, tm, tt.wantPlayhead, tt.wantTime)
		}
	}

	s.Animate = false
	if p, tm := s.FrameTime(5); p != 0 || tm != 0 {
		t.Fatalf("still FrameTime = (%v, %v), want (0, 0)", p, tm)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"webgl maps to webgpu", func(s *Settings) { s.Context = ContextWebGL }, true},
		{"zero width", func(s *Settings) { s.Dimensions[0] = 0 }, false},
		{"negative fps", func(s *Settings) { s.FPS = -1 }, false},
		{"nan duration", func(s *Settings) { s.Duration = math.NaN() }, false},
		{"zero pixel ratio", func(s *Settings) { s.PixelRatio = 0 }, false},
		{"unknown context", func(s *Settings) { s.Context = "2d" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); (err == nil) != tt.ok {
				t.Fatalf("Validate = %v, want ok=%v", err, tt.ok)
			}
		})
	}

	s := DefaultSettings()
	s.Context = ContextWebGL
	if b, err := s.Backend(); err != nil || b != renderer.BackendTypeWGPU {
		t.Fatalf("Backend(webgl) = %v, %v", b, err)
	}
	if _, err := NewEngine(WithFPS(0)); err == nil {
		t.Fatal("NewEngine with zero fps should fail")
	}
}

func TestRunStill(t *testing.T) {
	d := &fakeDrawable{}
	e := mustEngine(t, WithAnimate(false), WithDimensions(300, 200), WithPixelRatio(2))

	if err := e.Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []call{
		{kind: "resize", width: 300, height: 200, ratio: 2},
		{kind: "render"},
	}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, d.calls[i], want[i])
		}
	}
	if d.unloads != 1 || !e.Done() {
		t.Fatalf("unloads = %d, done = %v", d.unloads, e.Done())
	}
	if err := e.Step(d); !errors.Is(err, ErrDone) {
		t.Fatalf("Step after done = %v, want ErrDone", err)
	}
}

func TestRunLoops(t *testing.T) {
	d := &fakeDrawable{}
	e := mustEngine(t, WithFPS(4), WithDuration(1), WithLoop(2))

	if err := e.Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.calls[0].kind != "resize" {
		t.Fatalf("first call = %+v, want resize", d.calls[0])
	}
	renders := d.renderCalls()
	if len(renders) != 8 {
		t.Fatalf("renders = %d, want 8", len(renders))
	}
	for f, c := range renders {
		want := float64(f%4) / 4
		if c.playhead != want || c.t != want {
			t.Fatalf("frame %d = (%v, %v), want (%v, %v)", f, c.playhead, c.t, want, want)
		}
	}
	if len(d.calls) != 9 {
		t.Fatalf("expected a single resize, calls = %+v", d.calls)
	}
	if e.Frame() != 8 || d.unloads != 1 {
		t.Fatalf("frame = %d, unloads = %d", e.Frame(), d.unloads)
	}
}

func TestStepResizesOnViewportChange(t *testing.T) {
	d := &fakeDrawable{}
	e := mustEngine(t)
	impl := e.(*engine)

	for range 2 {
		if err := e.Step(d); err != nil {
			t.Fatal(err)
		}
	}
	impl.setViewport(common.Size{Width: 512, Height: 512}, 1)
	if err := e.Step(d); err != nil {
		t.Fatal(err)
	}
	impl.setViewport(common.Size{Width: 640, Height: 480}, 1.5)
	impl.setViewport(common.Size{Width: 0, Height: 480}, 1)
	if err := e.Step(d); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	for _, c := range d.calls {
		kinds = append(kinds, c.kind)
	}
	want := []string{"resize", "render", "render", "render", "resize", "render"}
	if len(kinds) != len(want) {
		t.Fatalf("calls = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("calls = %v, want %v", kinds, want)
		}
	}
	if c := d.calls[4]; c.width != 640 || c.height != 480 || c.ratio != 1.5 {
		t.Fatalf("second resize = %+v", c)
	}
	if size, ratio := e.Viewport(); size != (common.Size{Width: 640, Height: 480}) || ratio != 1.5 {
		t.Fatalf("Viewport = %v, %v", size, ratio)
	}
}

func TestResizeErrorIsRetried(t *testing.T) {
	d := &fakeDrawable{resizeErr: errors.New("bad surface")}
	e := mustEngine(t)

	if err := e.Step(d); !errors.Is(err, d.resizeErr) {
		t.Fatalf("Step = %v, want resize error", err)
	}
	if len(d.renderCalls()) != 0 {
		t.Fatal("rendered after a failed resize")
	}
	d.resizeErr = nil
	if err := e.Step(d); err != nil {
		t.Fatal(err)
	}
	if d.calls[1].kind != "resize" || d.calls[2].kind != "render" {
		t.Fatalf("calls = %+v", d.calls)
	}
}

func TestRunExport(t *testing.T) {
	d := &capturingDrawable{}
	x := &fakeExporter{}
	e := mustEngine(t, WithFPS(6), WithDuration(1), WithExporter(x))

	if err := e.Run(d); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.captures != 6 || x.added != 6 {
		t.Fatalf("captures = %d, added = %d, want 6", d.captures, x.added)
	}
	if x.saves != 1 || x.closes != 1 || d.unloads != 1 {
		t.Fatalf("saves = %d, closes = %d, unloads = %d", x.saves, x.closes, d.unloads)
	}
}

func TestRunExportRequiresCapture(t *testing.T) {
	d := &fakeDrawable{}
	e := mustEngine(t, WithExporter(&fakeExporter{}))
	if err := e.Run(d); !errors.Is(err, ErrNotCapturable) {
		t.Fatalf("Run = %v, want ErrNotCapturable", err)
	}
	if d.unloads != 1 {
		t.Fatalf("unloads = %d, want 1", d.unloads)
	}
}

func TestRunStopsOnRenderError(t *testing.T) {
	d := &fakeDrawable{renderErr: errors.New("lost device")}
	e := mustEngine(t)
	if err := e.Run(d); !errors.Is(err, d.renderErr) {
		t.Fatalf("Run = %v, want render error", err)
	}
	if d.renders != 1 || d.unloads != 1 {
		t.Fatalf("renders = %d, unloads = %d", d.renders, d.unloads)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	d := &fakeDrawable{panicAt: 3}
	e := mustEngine(t)
	if err := e.Run(d); !errors.Is(err, ErrRenderPanic) {
		t.Fatalf("Run = %v, want ErrRenderPanic", err)
	}
	if d.unloads != 1 {
		t.Fatalf("unloads = %d, want 1", d.unloads)
	}
}

func TestQuitBeforeRun(t *testing.T) {
	d := &fakeDrawable{}
	e := mustEngine(t)
	e.Quit()
	e.Quit()
	if err := e.Run(d); err != nil {
		t.Fatal(err)
	}
	if len(d.calls) != 0 || d.unloads != 1 {
		t.Fatalf("calls = %+v, unloads = %d", d.calls, d.unloads)
	}
}
