package renderer

import (
	"errors"
	"image"
	"testing"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeBackend struct {
	configured  []common.Size
	registered  []string
	writes      int
	draws       int
	instances   uint32
	begins      int
	ends        int
	presents    int
	releases    int
	clearColor  wgpu.Color
	presentMode PresentMode
	offscreen   bool
	configErr   error
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(w, h int) error {
	if f.configErr != nil {
		return f.configErr
	}
	f.configured = append(f.configured, common.Size{Width: w, Height: h})
	return nil
}
func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = mode }
func (f *fakeBackend) SetClearColor(c wgpu.Color)      { f.clearColor = c }
func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}
func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}
func (f *fakeBackend) WriteBuffers(w []bind_group_provider.BufferWrite) error {
	f.writes += len(w)
	return nil
}
func (f *fakeBackend) BeginFrame() error { f.begins++; return nil }
func (f *fakeBackend) DrawCall(_ pipeline.Pipeline, _ bind_group_provider.BindGroupProvider, n uint32, _ []bind_group_provider.BindGroupProvider) error {
	f.draws++
	f.instances = n
	return nil
}
func (f *fakeBackend) EndFrame() error { f.ends++; return nil }
func (f *fakeBackend) Present()        { f.presents++ }
func (f *fakeBackend) Capture() (*image.RGBA, error) {
	if !f.offscreen {
		return nil, ErrNotOffscreen
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}
func (f *fakeBackend) Offscreen() bool { return f.offscreen }
func (f *fakeBackend) Release()        { f.releases++ }

func TestRendererFrameLifecycle(t *testing.T) {
	b := &fakeBackend{}
	r := newRendererWithBackend(b)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	if err := r.RegisterPipelines(pipeline.NewPipeline("spheres"), pipeline.NewPipeline("spheres")); err != nil {
		t.Fatalf("RegisterPipelines: %v", err)
	}
	if len(b.registered) != 1 {
		t.Fatalf("registered %v, want one registration for a repeated key", b.registered)
	}

	if err := r.DrawCall("spheres", mesh, 40, nil); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("DrawCall outside frame = %v, want ErrNoFrame", err)
	}
	if err := r.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("EndFrame outside frame = %v, want ErrNoFrame", err)
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := r.BeginFrame(); !errors.Is(err, ErrFrameInProgress) {
		t.Fatalf("nested BeginFrame = %v, want ErrFrameInProgress", err)
	}
	if err := r.Resize(10, 10); !errors.Is(err, ErrFrameInProgress) {
		t.Fatalf("Resize in frame = %v, want ErrFrameInProgress", err)
	}
	if err := r.DrawCall("missing", mesh, 1, nil); err == nil {
		t.Fatal("DrawCall with unknown pipeline should fail")
	}
	if err := r.DrawCall("spheres", mesh, 40, nil); err != nil {
		t.Fatalf("DrawCall: %v", err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	r.Present()

	if b.begins != 1 || b.draws != 1 || b.instances != 40 || b.ends != 1 || b.presents != 1 {
		t.Fatalf("backend calls begin=%d draw=%d instances=%d end=%d present=%d",
			b.begins, b.draws, b.instances, b.ends, b.presents)
	}
}

func TestRendererResize(t *testing.T) {
	tests := []struct {
		name    string
		sizes   [][2]int
		want    []common.Size
		wantErr bool
	}{
		{"first resize configures", [][2]int{{512, 512}}, []common.Size{{Width: 512, Height: 512}}, false},
		{"same size is a no-op", [][2]int{{512, 512}, {512, 512}}, []common.Size{{Width: 512, Height: 512}}, false},
		{"size change reconfigures", [][2]int{{512, 512}, {1024, 1024}}, []common.Size{{Width: 512, Height: 512}, {Width: 1024, Height: 1024}}, false},
		{"zero width rejected", [][2]int{{0, 512}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			r := newRendererWithBackend(b)
			var err error
			for _, s := range tt.sizes {
				if e := r.Resize(s[0], s[1]); e != nil {
					err = e
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(b.configured) != len(tt.want) {
				t.Fatalf("configured %v, want %v", b.configured, tt.want)
			}
			for i := range tt.want {
				if b.configured[i] != tt.want[i] {
					t.Fatalf("configured %v, want %v", b.configured, tt.want)
				}
			}
		})
	}
}

func TestRendererResizeBackendErrorKeepsSize(t *testing.T) {
	b := &fakeBackend{}
	r := newRendererWithBackend(b)
	if err := r.Resize(64, 64); err != nil {
		t.Fatal(err)
	}
	b.configErr = errors.New("out of memory")
	if err := r.Resize(128, 128); !errors.Is(err, b.configErr) {
		t.Fatalf("Resize = %v, want wrapped backend error", err)
	}
	if got := r.Size(); got != (common.Size{Width: 64, Height: 64}) {
		t.Fatalf("Size = %v after failed resize, want 64x64", got)
	}
}

func TestRendererReleaseOnce(t *testing.T) {
	b := &fakeBackend{}
	r := newRendererWithBackend(b)
	p := pipeline.NewPipeline("spheres")
	if err := r.RegisterPipelines(p); err != nil {
		t.Fatal(err)
	}

	r.Release()
	r.Release()

	if b.releases != 1 {
		t.Fatalf("backend released %d times, want 1", b.releases)
	}
	if !r.Released() {
		t.Fatal("Released() = false after Release")
	}
	if r.Pipeline("spheres") != nil {
		t.Fatal("pipeline cache should be empty after Release")
	}
	if err := r.BeginFrame(); !errors.Is(err, ErrReleased) {
		t.Fatalf("BeginFrame after Release = %v, want ErrReleased", err)
	}
	if err := r.Resize(8, 8); !errors.Is(err, ErrReleased) {
		t.Fatalf("Resize after Release = %v, want ErrReleased", err)
	}
	if _, err := r.Capture(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Capture after Release = %v, want ErrReleased", err)
	}
}

func TestRendererOptions(t *testing.T) {
	b := &fakeBackend{}
	color := common.Color{R: 0.2, G: 0.4, B: 0.6}
	r := newRendererWithBackend(b, WithClearColor(color), WithPresentMode(PresentModeUncapped), WithAntialias(false), WithOffscreen(32, 16))

	if r.ClearColor() != color {
		t.Fatalf("ClearColor = %v, want %v", r.ClearColor(), color)
	}
	if b.clearColor.A != 1 || float32(b.clearColor.G) != color.G {
		t.Fatalf("backend clear color = %v", b.clearColor)
	}
	if b.presentMode != PresentModeUncapped {
		t.Fatalf("present mode = %v, want uncapped", b.presentMode)
	}
	if r.pendingMSAA == nil || *r.pendingMSAA != MSAAOff {
		t.Fatalf("antialias=false should select MSAAOff")
	}
	if r.offscreenSize == nil || *r.offscreenSize != (common.Size{Width: 32, Height: 16}) {
		t.Fatalf("offscreen size = %v", r.offscreenSize)
	}
}

func TestRendererCapture(t *testing.T) {
	r := newRendererWithBackend(&fakeBackend{})
	if _, err := r.Capture(); !errors.Is(err, ErrNotOffscreen) {
		t.Fatalf("windowed Capture = %v, want ErrNotOffscreen", err)
	}

	r = newRendererWithBackend(&fakeBackend{offscreen: true})
	img, err := r.Capture()
	if err != nil {
		t.Fatalf("offscreen Capture: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Fatalf("captured width = %d", img.Bounds().Dx())
	}
}

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct {
		width int
		want  uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{512, 2048},
	}
	for _, tt := range tests {
		if got := alignedBytesPerRow(tt.width); got != tt.want {
			t.Errorf("alignedBytesPerRow(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestUnpadRows(t *testing.T) {
	// 2x2 image, 8 bytes per row padded to 12
	data := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0,
		9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0,
	}
	img := unpadRows(data, 2, 2, 12)
	if got := img.RGBAAt(1, 1); got.R != 13 || got.A != 16 {
		t.Fatalf("pixel (1,1) = %v", got)
	}
	if got := img.RGBAAt(0, 1); got.R != 9 {
		t.Fatalf("pixel (0,1) = %v", got)
	}
}

func TestPickSurfaceFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
	}{
		{"prefers linear bgra", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatBGRA8Unorm},
		{"falls back to rgba", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatRGBA8Unorm},
		{"first when nothing preferred", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatRGBA16Float},
		{"empty list", nil, wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickSurfaceFormat(tt.formats); got != tt.want {
				t.Fatalf("pickSurfaceFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "camera", Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 1, Visibility: wgpu.ShaderStageFragment}, {Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
		1: {Label: "frag only"},
	}
	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("merged groups = %d, want 2", len(merged))
	}
	g0 := merged[0]
	if len(g0.Entries) != 2 || g0.Entries[0].Binding != 0 || g0.Entries[1].Binding != 1 {
		t.Fatalf("group 0 entries = %+v", g0.Entries)
	}
	if g0.Entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("shared binding visibility = %v", g0.Entries[0].Visibility)
	}
	if merged[1].Label != "frag only" {
		t.Fatalf("fragment-only group label = %q", merged[1].Label)
	}
}
