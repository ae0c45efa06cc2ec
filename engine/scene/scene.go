package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/camera"
	"github.com/Carmen-Shannon/noise-spheres/engine/easing"
	"github.com/Carmen-Shannon/noise-spheres/engine/game_object"
	"github.com/Carmen-Shannon/noise-spheres/engine/light"
	"github.com/Carmen-Shannon/noise-spheres/engine/palette"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/shader"
)

//go:embed assets/sphere_vertex.wgsl
var sphereVertexSource string

//go:embed assets/sphere_fragment.wgsl
var sphereFragmentSource string

var (
	// ErrUnloaded is returned by Resize and Render after Unload.
	ErrUnloaded = errors.New("scene unloaded")

	// ErrNotResized is returned by Render before the first successful Resize.
	ErrNotResized = errors.New("scene rendered before first resize")
)

// instanceStride is the byte size of one GPUSphereInstance slot in the instance storage buffer.
var instanceStride = (&game_object.GPUSphereInstance{}).Size()

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	plan *Plan
	r    renderer.Renderer
	ease easing.Func

	vertexShader   shader.Shader
	fragmentShader shader.Shader

	meshProvider     bind_group_provider.BindGroupProvider
	instanceProvider bind_group_provider.BindGroupProvider
	cameraBinding    int
	instanceBinding  int

	// bindGroups[i] is bound at group i of the sphere pipeline
	bindGroups []bind_group_provider.BindGroupProvider

	// instanceBytes holds one instanceStride slot per mesh; workers write disjoint slots
	instanceBytes []byte
	writes        []bind_group_provider.BufferWrite

	pool    worker.DynamicWorkerPool
	workers int

	rotation float32
	frames   uint64
	resized  bool
	unloaded bool
	once     sync.Once
}

// Scene is the noise-spheres sketch bound to a renderer. It owns the GPU resources created for its plan
// and drives them from the harness callbacks: Resize on viewport changes, Render once per frame, and
// Unload once at the end.
type Scene interface {
	// Resize reconfigures the camera for a logical viewport and resizes the renderer to the matching
	// physical size (logical size times pixelRatio).
	//
	// Parameters:
	//   - width: the logical viewport width
	//   - height: the logical viewport height
	//   - pixelRatio: physical pixels per logical unit
	//
	// Returns:
	//   - error: camera.ErrInvalidViewport, ErrUnloaded, or a renderer error
	Resize(width, height int, pixelRatio float64) error

	// Render draws one frame. Every material time is set to time, the root rotation becomes
	// ease(sin(playhead*pi)), the instance buffer is rebuilt on the worker pool, and a single
	// instanced draw call is issued.
	//
	// Parameters:
	//   - playhead: loop progress in [0, 1)
	//   - time: seconds into the loop
	//
	// Returns:
	//   - error: ErrNotResized, ErrUnloaded, or a renderer error
	Render(playhead, time float64) error

	// Unload stops the worker pool and releases the mesh, camera and instance resources, then the
	// renderer. Only the first call has any effect.
	Unload()

	// Capture returns the last rendered frame when the renderer is offscreen.
	Capture() (*image.RGBA, error)

	// Rotation returns the current root z-rotation in radians.
	Rotation() float32

	// Frames returns the number of frames rendered so far.
	Frames() uint64

	// Meshes returns the sphere entities in plan order.
	Meshes() []game_object.GameObject

	// Lights returns the ambient and directional lights.
	Lights() []light.Light

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Palette returns the palette the mesh colors were drawn from.
	Palette() palette.Palette

	// Plan returns the plan the scene was built from.
	Plan() *Plan

	// Unloaded reports whether Unload has run.
	Unloaded() bool
}

var _ Scene = &scene{}

// NewScene uploads a plan to the GPU: the shared sphere mesh, one camera bind group, one instance
// storage buffer with a slot per mesh, and the sphere pipeline.
//
// Parameters:
//   - plan: the plan from Build
//   - r: the renderer to draw with; the scene takes ownership and releases it in Unload
//   - options: SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene, ready for its first Resize
//   - error: an error if the plan is empty or any GPU upload fails
func NewScene(plan *Plan, r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	if plan == nil || r == nil {
		return nil, errors.New("scene: NewScene requires a plan and a renderer")
	}
	if len(plan.Meshes) == 0 {
		return nil, errors.New("scene: plan has no meshes")
	}

	s := &scene{
		mu:      &sync.Mutex{},
		plan:    plan,
		r:       r,
		ease:    easing.Sketch,
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(s)
	}

	s.vertexShader = shader.NewShader("sphere_vertex", shader.ShaderTypeVertex, sphereVertexSource)
	s.fragmentShader = shader.NewShader("sphere_fragment", shader.ShaderTypeFragment, sphereFragmentSource)

	if err := s.upload(); err != nil {
		return nil, err
	}

	s.instanceBytes = make([]byte, len(plan.Meshes)*instanceStride)
	s.writes = make([]bind_group_provider.BufferWrite, 0, 2)
	s.pool = worker.NewDynamicWorkerPool(s.workers, len(plan.Meshes), time.Second)
	r.SetClearColor(plan.ClearColor)

	log.Printf("[Scene] seed %d: %d meshes, palette of %d colors", plan.Seed, len(plan.Meshes), len(plan.Palette))
	return s, nil
}

// upload registers the pipeline and creates every GPU resource the scene draws with.
func (s *scene) upload() error {
	p := pipeline.NewPipeline(PipelineKey,
		pipeline.WithShaders(s.vertexShader, s.fragmentShader),
	)
	if err := s.r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	m := s.plan.Model
	s.meshProvider = bind_group_provider.NewBindGroupProvider("sphere_mesh")
	m.SetMeshProvider(s.meshProvider)
	if err := s.r.InitMeshBuffers(s.meshProvider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fmt.Errorf("scene: upload sphere mesh: %w", err)
	}

	cameraGroup, cameraBinding, ok := s.vertexShader.GroupFor(shader.AnnotationArgCamera)
	if !ok {
		return errors.New("scene: vertex shader declares no camera binding")
	}
	instanceGroup, instanceBinding, ok := s.vertexShader.GroupFor(shader.AnnotationArgSphereInstance)
	if !ok {
		return errors.New("scene: vertex shader declares no instance binding")
	}
	s.cameraBinding, s.instanceBinding = cameraBinding, instanceBinding

	cameraProvider := s.plan.Camera.BindGroupProvider()
	if err := s.r.InitBindGroup(cameraProvider, s.vertexShader.BindGroupLayoutDescriptor(cameraGroup), nil, nil); err != nil {
		return fmt.Errorf("scene: init camera bind group: %w", err)
	}

	s.instanceProvider = bind_group_provider.NewBindGroupProvider("sphere_instances")
	sizes := map[int]uint64{instanceBinding: uint64(len(s.plan.Meshes) * instanceStride)}
	if err := s.r.InitBindGroup(s.instanceProvider, s.vertexShader.BindGroupLayoutDescriptor(instanceGroup), nil, sizes); err != nil {
		return fmt.Errorf("scene: init instance bind group: %w", err)
	}

	s.bindGroups = make([]bind_group_provider.BindGroupProvider, max(cameraGroup, instanceGroup)+1)
	s.bindGroups[cameraGroup] = cameraProvider
	s.bindGroups[instanceGroup] = s.instanceProvider
	for i, bg := range s.bindGroups {
		if bg == nil {
			return fmt.Errorf("scene: bind group %d has no provider", i)
		}
	}
	return nil
}

func (s *scene) Resize(width, height int, pixelRatio float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unloaded {
		return ErrUnloaded
	}
	if err := s.plan.Camera.Resize(width, height, pixelRatio); err != nil {
		return err
	}
	physical := common.Size{Width: width, Height: height}.Scaled(pixelRatio)
	if err := s.r.Resize(physical.Width, physical.Height); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	s.resized = true
	return nil
}

func (s *scene) Render(playhead, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unloaded {
		return ErrUnloaded
	}
	if !s.resized {
		return ErrNotResized
	}

	s.rotation = RotationAt(s.ease, float32(playhead))
	for _, m := range s.plan.Meshes {
		m.Material().SetTime(float32(t))
	}
	s.prepareInstances()

	cam := s.plan.Camera.Uniform()
	s.writes = append(s.writes[:0],
		bind_group_provider.BufferWrite{Provider: s.plan.Camera.BindGroupProvider(), Binding: s.cameraBinding, Data: cam.Marshal()},
		bind_group_provider.BufferWrite{Provider: s.instanceProvider, Binding: s.instanceBinding, Data: s.instanceBytes},
	)
	if err := s.r.WriteBuffers(s.writes); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	if err := s.r.BeginFrame(); err != nil {
		return fmt.Errorf("scene: begin frame: %w", err)
	}
	drawErr := s.r.DrawCall(PipelineKey, s.meshProvider, uint32(len(s.plan.Meshes)), s.bindGroups)
	// the pass is ended even when the draw failed so the renderer is not left mid-frame
	if err := s.r.EndFrame(); err != nil && drawErr == nil {
		drawErr = err
	}
	if drawErr != nil {
		return fmt.Errorf("scene: draw: %w", drawErr)
	}
	s.r.Present()
	s.frames++
	return nil
}

// prepareInstances packs every mesh's instance into its slot of instanceBytes on the worker pool.
// Slots are disjoint, so the only synchronization is the per-frame barrier.
func (s *scene) prepareInstances() {
	var wg sync.WaitGroup
	rotation := s.rotation
	for i, m := range s.plan.Meshes {
		wg.Add(1)
		slot := s.instanceBytes[i*instanceStride : (i+1)*instanceStride]
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				inst := m.Instance(rotation)
				copy(slot, inst.Marshal())
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// RotationAt returns the root z-rotation for a playhead: ease(sin(playhead*pi)).
//
// Parameters:
//   - ease: the easing curve
//   - playhead: loop progress in [0, 1)
//
// Returns:
//   - float32: the rotation in radians
func RotationAt(ease easing.Func, playhead float32) float32 {
	return ease(easing.SineWave(playhead))
}

func (s *scene) Unload() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.unloaded = true
		s.pool.Stop()
		s.meshProvider.Release()
		s.plan.Camera.BindGroupProvider().Release()
		s.instanceProvider.Release()
		s.r.Release()
		log.Printf("[Scene] unloaded after %d frames", s.frames)
	})
}

func (s *scene) Capture() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unloaded {
		return nil, ErrUnloaded
	}
	return s.r.Capture()
}

func (s *scene) Rotation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation
}

func (s *scene) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *scene) Meshes() []game_object.GameObject {
	return s.plan.Meshes
}

func (s *scene) Lights() []light.Light {
	return s.plan.Lights
}

func (s *scene) Camera() camera.Camera {
	return s.plan.Camera
}

func (s *scene) Palette() palette.Palette {
	return s.plan.Palette
}

func (s *scene) Plan() *Plan {
	return s.plan
}

func (s *scene) Unloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unloaded
}
