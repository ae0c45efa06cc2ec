package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one logged sample of frame and memory statistics.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	readMemStats   func(*runtime.MemStats)
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	samples        int
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		readMemStats:   runtime.ReadMemStats,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	p.readMemStats(&p.memStats)
	s := Stats{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	if p.memStats.TotalAlloc >= p.lastTotalAlloc {
		s.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
	}
	s.LastPauseUs, s.MaxPauseUs = pauses(&p.memStats, p.lastGCCount)

	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		s.FPS, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	p.samples++
	return true
}

// Last returns the most recently logged sample and whether any sample has been taken.
func (p *Profiler) Last() (Stats, bool) {
	return p.last, p.samples > 0
}

// pauses returns the most recent GC pause and the longest pause since sinceGC, in microseconds.
// PauseNs is a circular buffer of the last 256 pauses.
func pauses(m *runtime.MemStats, sinceGC uint32) (last, longest uint64) {
	gcCount := m.NumGC
	if gcCount == 0 {
		return 0, 0
	}
	last = m.PauseNs[(gcCount-1)%256] / 1000

	start := sinceGC
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		if pause := m.PauseNs[i%256] / 1000; pause > longest {
			longest = pause
		}
	}
	return last, longest
}
