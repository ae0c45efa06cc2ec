package camera

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

// ErrInvalidViewport is returned by Resize when either viewport dimension is not positive.
var ErrInvalidViewport = errors.New("camera: viewport width and height must be positive")

// State is the lifecycle state of a Camera.
type State int

const (
	// StateUninitialized is the state before the first successful Resize. Matrices are identity.
	StateUninitialized State = iota

	// StateConfigured is the state after any successful Resize.
	StateConfigured
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

const (
	// DefaultZoom is the half-height of the view volume in world units.
	DefaultZoom = 2

	// DefaultNear is the near plane. It is negative so geometry behind the eye is still drawn.
	DefaultNear = -100

	// DefaultFar is the far plane.
	DefaultFar = 100
)

type cameraImpl struct {
	mu *sync.Mutex

	state State

	zoom   float32
	near   float32
	far    float32
	up     [3]float32
	target [3]float32

	viewport   common.Size
	pixelRatio float64
	aspect     float32

	left, right, bottom, top float32
	position                 [3]float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for an orthographic camera whose bounds follow the viewport.
//
// The camera starts in StateUninitialized and moves to StateConfigured on the first successful
// Resize. Every Resize recomputes all parameters from the viewport alone, so repeated calls with
// the same viewport leave the camera bit-for-bit unchanged.
type Camera interface {
	// State returns the camera's lifecycle state.
	//
	// Returns:
	//   - State: StateUninitialized or StateConfigured
	State() State

	// Resize recomputes the orthographic bounds, eye position and matrices for a viewport.
	// The horizontal bounds are zoom*aspect, the vertical bounds are zoom, and the eye sits at
	// (zoom, zoom, zoom) offset from the target.
	//
	// Parameters:
	//   - width: the viewport width in logical pixels
	//   - height: the viewport height in logical pixels
	//   - pixelRatio: the device pixel ratio, recorded for the renderer
	//
	// Returns:
	//   - error: ErrInvalidViewport if width or height is not positive; the camera is left unchanged
	Resize(width, height int, pixelRatio float64) error

	// Zoom returns the half-height of the view volume.
	//
	// Returns:
	//   - float32: the zoom
	Zoom() float32

	// Bounds returns the orthographic view volume edges.
	//
	// Returns:
	//   - left, right, bottom, top: the volume edges in view space
	Bounds() (left, right, bottom, top float32)

	// Near returns the near clipping plane.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Aspect returns the aspect ratio (width / height) of the last viewport.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Viewport returns the last logical viewport size and pixel ratio.
	//
	// Returns:
	//   - common.Size: the viewport size
	//   - float64: the pixel ratio
	Viewport() (common.Size, float64)

	// Position returns the eye position in world space.
	//
	// Returns:
	//   - [3]float32: the eye position
	Position() [3]float32

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Uniform snapshots the camera into its GPU representation.
	//
	// Returns:
	//   - GPUCameraUniform: the view-projection matrix and eye position packed for upload
	Uniform() GPUCameraUniform

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new uninitialized orthographic Camera with the sketch defaults:
// zoom 2, near -100, far 100, +Y up, looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		zoom:   DefaultZoom,
		near:   DefaultNear,
		far:    DefaultFar,
		up:     [3]float32{0, 1, 0},
		aspect: 1,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	common.Identity(c.viewMatrix[:])
	common.Identity(c.projectionMatrix[:])
	common.Identity(c.viewProjectionMatrix[:])
	for _, option := range options {
		option(c)
	}
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *cameraImpl) Resize(width, height int, pixelRatio float64) error {
	viewport := common.Size{Width: width, Height: height}
	if !viewport.Valid() {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidViewport, width, height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.viewport = viewport
	c.pixelRatio = pixelRatio
	c.aspect = viewport.Aspect()

	c.left = -c.zoom * c.aspect
	c.right = c.zoom * c.aspect
	c.top = c.zoom
	c.bottom = -c.zoom

	c.position = [3]float32{
		c.target[0] + c.zoom,
		c.target[1] + c.zoom,
		c.target[2] + c.zoom,
	}

	c.updateMatrices()
	c.state = StateConfigured
	return nil
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) Bounds() (left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right, c.bottom, c.top
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Viewport() (common.Size, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport, c.pixelRatio
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		CameraPosition: c.position,
	}
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider = provider
}

// updateMatrices recalculates the view, projection and view-projection matrices from the
// current bounds and eye position. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.LookAt(c.position, c.target, c.up)
	c.projectionMatrix = common.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
}
