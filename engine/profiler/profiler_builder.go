package profiler

import (
	"runtime"
	"time"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often stats are logged. Non-positive values are ignored.
//
// Parameters:
//   - interval: the logging interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now as the profiler's time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMemStatsReader replaces runtime.ReadMemStats.
func WithMemStatsReader(read func(*runtime.MemStats)) ProfilerBuilderOption {
	return func(p *Profiler) {
		if read != nil {
			p.readMemStats = read
		}
	}
}
