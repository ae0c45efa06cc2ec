package exporter

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/setanarut/apng"
)

var (
	// ErrNoFrames is returned when encoding an export that has no frames.
	ErrNoFrames = errors.New("exporter: no frames captured")

	// ErrClosed is returned by Add after Close.
	ErrClosed = errors.New("exporter: closed")
)

// exporter implements the Exporter interface.
type exporter struct {
	mu *sync.Mutex

	path      string
	delay     uint16
	loopCount uint32
	workers   int

	// frames[i] is nil until the copy of frame i lands
	frames []image.Image
	bounds image.Rectangle

	pool    worker.DynamicWorkerPool
	pending sync.WaitGroup

	closed bool
	once   sync.Once
}

// Exporter collects rendered frames and writes them out as one animated PNG.
type Exporter interface {
	// Add queues a copy of frame. The caller may reuse frame as soon as Add returns an error or once
	// the next Encode/Save has returned. Every frame must have the bounds of the first.
	//
	// Parameters:
	//   - frame: the captured frame
	//
	// Returns:
	//   - error: ErrClosed, or an error if frame is nil or its bounds differ from the first frame
	Add(frame *image.RGBA) error

	// Frames returns the number of frames added.
	Frames() int

	// Path returns the output file path.
	Path() string

	// Delay returns the per-frame delay in hundredths of a second.
	Delay() uint16

	// Encode waits for pending copies and writes the animation to w.
	Encode(w io.Writer) error

	// Save encodes the animation to Path.
	Save() error

	// Close stops the copy workers. Only the first call has any effect.
	Close()
}

var _ Exporter = &exporter{}

// NewExporter creates an exporter that writes to path with one frame every 1/fps seconds.
//
// Parameters:
//   - path: the output .png path
//   - fps: frames per second of the animation
//   - options: ExporterBuilderOption functions
//
// Returns:
//   - Exporter: the exporter
//   - error: an error if path is empty or fps is not positive
func NewExporter(path string, fps float64, options ...ExporterBuilderOption) (Exporter, error) {
	if path == "" {
		return nil, errors.New("exporter: empty output path")
	}
	if fps <= 0 || math.IsInf(fps, 0) || math.IsNaN(fps) {
		return nil, fmt.Errorf("exporter: invalid fps %v", fps)
	}

	e := &exporter{
		mu:      &sync.Mutex{},
		path:    path,
		delay:   FrameDelay(fps),
		workers: max(runtime.NumCPU()/2, 1),
	}
	for _, opt := range options {
		opt(e)
	}
	e.pool = worker.NewDynamicWorkerPool(e.workers, e.workers*4, time.Second)
	return e, nil
}

// FrameDelay converts a frame rate to an APNG frame delay in hundredths of a second, at least 1.
//
// Parameters:
//   - fps: frames per second
//
// Returns:
//   - uint16: the delay
func FrameDelay(fps float64) uint16 {
	d := math.Round(100 / fps)
	return uint16(min(max(d, 1), math.MaxUint16))
}

func (e *exporter) Add(frame *image.RGBA) error {
	if frame == nil {
		return errors.New("exporter: nil frame")
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if len(e.frames) == 0 {
		e.bounds = frame.Bounds()
	} else if frame.Bounds() != e.bounds {
		e.mu.Unlock()
		return fmt.Errorf("exporter: frame %d bounds %v differ from %v", len(e.frames), frame.Bounds(), e.bounds)
	}
	idx := len(e.frames)
	e.frames = append(e.frames, nil)
	e.pending.Add(1)
	e.mu.Unlock()

	e.pool.SubmitTask(worker.Task{
		ID: idx,
		Do: func() (any, error) {
			defer e.pending.Done()
			dst := image.NewRGBA(image.Rect(0, 0, frame.Bounds().Dx(), frame.Bounds().Dy()))
			draw.Draw(dst, dst.Bounds(), frame, frame.Bounds().Min, draw.Src)
			e.mu.Lock()
			e.frames[idx] = dst
			e.mu.Unlock()
			return nil, nil
		},
	})
	return nil
}

func (e *exporter) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.frames)
}

func (e *exporter) Path() string {
	return e.path
}

func (e *exporter) Delay() uint16 {
	return e.delay
}

func (e *exporter) Encode(w io.Writer) error {
	e.pending.Wait()

	e.mu.Lock()
	if len(e.frames) == 0 {
		e.mu.Unlock()
		return ErrNoFrames
	}
	images := make([]image.Image, len(e.frames))
	copy(images, e.frames)
	e.mu.Unlock()

	delays := make([]uint16, len(images))
	for i := range delays {
		delays[i] = e.delay
	}
	a := &apng.APNG{
		Images:    images,
		Delays:    delays,
		LoopCount: e.loopCount,
	}
	if err := apng.EncodeAll(w, a); err != nil {
		return fmt.Errorf("exporter: encode: %w", err)
	}
	return nil
}

func (e *exporter) Save() error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("exporter: %w", err)
	}
	if err := e.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("exporter: %w", err)
	}
	log.Printf("[Exporter] wrote %d frames to %s", e.Frames(), e.path)
	return nil
}

func (e *exporter) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		e.pending.Wait()
		e.pool.Stop()
	})
}
