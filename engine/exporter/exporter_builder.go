package exporter

// ExporterBuilderOption is a functional option for configuring an Exporter.
type ExporterBuilderOption func(*exporter)

// WithWorkers sets how many goroutines copy captured frames. Values below 1 are ignored.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - ExporterBuilderOption: option function to apply
func WithWorkers(workers int) ExporterBuilderOption {
	return func(e *exporter) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithLoopCount sets how many times viewers play the animation. 0, the default, loops forever.
func WithLoopCount(n uint32) ExporterBuilderOption {
	return func(e *exporter) {
		e.loopCount = n
	}
}
