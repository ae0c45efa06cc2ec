package renderer

import (
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// offscreenFormat is the color format of the headless target. It is non-sRGB so that
// shader output bytes match what Capture returns.
const offscreenFormat = wgpu.TextureFormatRGBA8Unorm

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface // nil when offscreen

	offscreen     bool
	colorFormat   wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color
	width, height int

	// size-dependent targets, recreated by ConfigureSurface
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	colorTexture         *wgpu.Texture // offscreen only
	colorTextureView     *wgpu.TextureView
	readbackBuffer       *wgpu.Buffer
	readbackBytesPerRow  uint32
	renderPassDescriptor *wgpu.RenderPassDescriptor

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	submitted    bool

	released bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, adapter, device and queue. A nil surfaceDescriptor
// selects offscreen rendering. Any failure here is fatal and panics.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: 0.95, G: 0.95, B: 0.95, A: 1},
		offscreen:   surfaceDescriptor == nil,
	}

	opts := &wgpu.RequestAdapterOptions{ForceFallbackAdapter: forceFallbackAdapter}
	if !b.offscreen {
		b.surface = b.instance.CreateSurface(surfaceDescriptor)
		opts.CompatibleSurface = b.surface
	}

	a, err := b.instance.RequestAdapter(opts)
	if err != nil {
		panic(fmt.Errorf("request adapter: %w", err))
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Sketch Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Errorf("request device: %w", err))
	}
	b.device = d
	b.queue = d.GetQueue()

	if b.offscreen {
		b.colorFormat = offscreenFormat
	} else {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.colorFormat = pickSurfaceFormat(capabilities.Formats)
		if len(capabilities.AlphaModes) > 0 {
			b.alphaMode = capabilities.AlphaModes[0]
		}
	}
	log.Printf("[Renderer] device ready (format %s, msaa %dx, offscreen %t)", b.colorFormat, b.sampleCount, b.offscreen)

	return b
}

// pickSurfaceFormat prefers a linear 8-bit format so the sketch colors are written unmodified,
// falling back to the surface's first reported format.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, preferred := range []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm} {
		if slices.Contains(formats, preferred) {
			return preferred
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm
	}
	return formats[0]
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("configure %dx%d: size must be positive", width, height)
	}

	b.releaseTargets()
	b.width, b.height = width, height
	extent := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	count := uint32(b.sampleCount)

	if b.offscreen {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Offscreen Color Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.colorFormat,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("create offscreen texture: %w", err)
		}
		b.colorTexture = tex
		if b.colorTextureView, err = tex.CreateView(nil); err != nil {
			return fmt.Errorf("create offscreen view: %w", err)
		}

		b.readbackBytesPerRow = alignedBytesPerRow(width)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Offscreen Readback Buffer",
			Size:  uint64(b.readbackBytesPerRow) * uint64(height),
			Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create readback buffer: %w", err)
		}
		b.readbackBuffer = buf
	} else {
		b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      b.colorFormat,
			Width:       uint32(width),
			Height:      uint32(height),
			PresentMode: b.presentMode,
			AlphaMode:   b.alphaMode,
		})
	}

	msaaEnabled := count > 1
	if msaaEnabled {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.colorFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create msaa texture: %w", err)
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			return fmt.Errorf("create msaa view: %w", err)
		}
	}

	// depth sample count must match the color attachment
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	b.depthTexture = depth
	if b.depthTextureView, err = depth.CreateView(nil); err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}

	// With MSAA the pass draws into the MSAA view and resolves into the frame target.
	// Without it the frame target is the attachment view directly.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	b.submitted = false

	return nil
}

// alignedBytesPerRow rounds a tightly packed RGBA row up to the copy alignment.
func alignedBytesPerRow(width int) uint32 {
	unpadded := uint32(width) * 4
	align := uint32(wgpu.CopyBytesPerRowAlignment)
	return (unpadded + align - 1) / align * align
}

// releaseTargets frees the size-dependent textures and buffers. Caller holds mu.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	for _, v := range []**wgpu.TextureView{&b.msaaTextureView, &b.depthTextureView, &b.colorTextureView} {
		if *v != nil {
			(*v).Release()
			*v = nil
		}
	}
	for _, t := range []**wgpu.Texture{&b.msaaTexture, &b.depthTexture, &b.colorTexture} {
		if *t != nil {
			(*t).Destroy()
			(*t).Release()
			*t = nil
		}
	}
	if b.readbackBuffer != nil {
		b.readbackBuffer.Release()
		b.readbackBuffer = nil
	}
	b.renderPassDescriptor = nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(color wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = color
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = color
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var objects pipeline.GPUObjects
	fail := func(err error) error {
		releaseGPUObjects(objects)
		return err
	}

	for _, s := range []shader.Shader{vertexShader, fragmentShader} {
		module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          s.Key(),
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
		})
		if err != nil {
			return fail(fmt.Errorf("shader module %q: %w", s.Key(), err))
		}
		objects.Modules = append(objects.Modules, module)
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	objects.BindGroupLayouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := 0; g <= maxGroup; g++ {
		desc := merged[g]
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fail(fmt.Errorf("bind group layout for group %d: %w", g, err))
		}
		objects.BindGroupLayouts[g] = layout
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: objects.BindGroupLayouts,
	})
	if err != nil {
		return fail(fmt.Errorf("pipeline layout: %w", err))
	}
	objects.Layout = layout

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(i)...)
	}

	target := wgpu.ColorTargetState{
		Format:    b.colorFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}
	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     objects.Modules[0],
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     objects.Modules[1],
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fail(fmt.Errorf("render pipeline %q: %w", p.PipelineKey(), err))
	}
	objects.RenderPipeline = created

	p.SetGPUObjects(objects)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
		if err := b.queue.WriteBuffer(buf, 0, vertexData); err != nil {
			return fmt.Errorf("write vertex buffer: %w", err)
		}
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
		if err := b.queue.WriteBuffer(buf, 0, indexData); err != nil {
			return fmt.Errorf("write index buffer: %w", err)
		}
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		var usage wgpu.BufferUsage
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		default:
			return fmt.Errorf("binding %d of %q is not a buffer binding", binding, provider.Label())
		}
		if extra, ok := bufferUsageOverrides[binding]; ok {
			usage |= extra
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("write to %q binding %d: buffer not initialized", w.Provider.Label(), w.Binding)
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("write to %q binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface not configured")
	}
	// a held surface texture means the previous frame was never presented
	if b.frameSurface != nil || b.frameEncoder != nil {
		return ErrFrameInProgress
	}

	target := b.colorTextureView
	if !b.offscreen {
		surfaceTexture, err := b.surface.GetCurrentTexture()
		if err != nil {
			return fmt.Errorf("acquire surface texture: %w", err)
		}
		view, err := surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			return fmt.Errorf("create surface view: %w", err)
		}
		b.frameSurface = surfaceTexture
		b.frameView = view
		target = view
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.releaseFrame()
		return fmt.Errorf("create command encoder: %w", err)
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = target
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = target
	}
	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	renderPipeline := p.RenderPipeline()
	if renderPipeline == nil {
		return fmt.Errorf("pipeline %q is not registered", p.PipelineKey())
	}
	if meshProvider.VertexBuffer() == nil || meshProvider.IndexBuffer() == nil {
		return fmt.Errorf("mesh %q has no buffers", meshProvider.Label())
	}

	b.framePass.SetPipeline(renderPipeline)
	for i, bg := range bindGroups {
		if bg.BindGroup() == nil {
			return fmt.Errorf("bind group %d (%q) is not initialized", i, bg.Label())
		}
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}

	endErr := b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
	if endErr != nil {
		b.releaseFrame()
		return fmt.Errorf("end render pass: %w", endErr)
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.releaseFrame()
		return fmt.Errorf("finish encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.submitted = true

	return nil
}

// releaseFrame drops any per-frame objects still held. Caller holds mu.
func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

func (b *wgpuRendererBackendImpl) Capture() (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.offscreen {
		return nil, ErrNotOffscreen
	}
	if !b.submitted || b.readbackBuffer == nil {
		return nil, ErrNoFrame
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("create capture encoder: %w", err)
	}
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: b.colorTexture, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyBuffer{
			Buffer: b.readbackBuffer,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  b.readbackBytesPerRow,
				RowsPerImage: uint32(b.height),
			},
		},
		&wgpu.Extent3D{Width: uint32(b.width), Height: uint32(b.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return nil, fmt.Errorf("copy frame to readback buffer: %w", err)
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("finish capture encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	size := uint64(b.readbackBytesPerRow) * uint64(b.height)
	var (
		status wgpu.BufferMapAsyncStatus
		mapped bool
	)
	if err := b.readbackBuffer.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status, mapped = s, true
	}); err != nil {
		return nil, fmt.Errorf("map readback buffer: %w", err)
	}
	b.device.Poll(true, nil)
	if !mapped || status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("map readback buffer: status %v", status)
	}
	defer b.readbackBuffer.Unmap()

	data := b.readbackBuffer.GetMappedRange(0, uint(size))
	return unpadRows(data, b.width, b.height, int(b.readbackBytesPerRow)), nil
}

// unpadRows copies tightly packed RGBA rows out of an aligned readback buffer.
func unpadRows(data []byte, width, height, bytesPerRow int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowBytes := width * 4
	for y := range height {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], data[y*bytesPerRow:y*bytesPerRow+rowBytes])
	}
	return img
}

func (b *wgpuRendererBackendImpl) Offscreen() bool {
	return b.offscreen
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	b.releaseFrame()
	b.releaseTargets()
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	log.Printf("[Renderer] backend released")
}

// releaseGPUObjects frees partially created pipeline objects after a failed registration.
func releaseGPUObjects(objects pipeline.GPUObjects) {
	if objects.Layout != nil {
		objects.Layout.Release()
	}
	for _, bgl := range objects.BindGroupLayouts {
		if bgl != nil {
			bgl.Release()
		}
	}
	for _, m := range objects.Modules {
		m.Release()
	}
}

// mergeBindGroupLayouts combines vertex and fragment bind group layout descriptors.
// Groups present in both stages have their entries merged by binding, with visibility OR-ed.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(vertexLayouts)+len(fragmentLayouts))
	for g, desc := range vertexLayouts {
		merged[g] = desc
	}

	for g, fDesc := range fragmentLayouts {
		vDesc, ok := merged[g]
		if !ok {
			merged[g] = fDesc
			continue
		}

		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vDesc.Entries)+len(fDesc.Entries))
		for _, e := range vDesc.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := byBinding[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				byBinding[e.Binding] = existing
			} else {
				byBinding[e.Binding] = e
			}
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})

		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   vDesc.Label,
			Entries: entries,
		}
	}

	return merged
}
