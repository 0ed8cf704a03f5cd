package ports

// Policy holds the integrator-facing capacity decisions the pipeline itself
// does not impose. The default queue is unbounded; dropping input is worse for
// correctness than transient memory growth, so a cap is opt-in.
type Policy struct {
	// MaxQueueDepth caps the sample queue; 0 means unbounded.
	MaxQueueDepth int
	// OnQueueFull is "reject" or "drop_oldest"; only consulted when
	// MaxQueueDepth > 0.
	OnQueueFull string
}
