package ports

import "github.com/frameflow/frameflow/internal/domain"

// SampleQueue is the ordered holding area for samples not yet delivered. It is
// owned by the dispatcher; Push appends in arrival order and DrainUpTo removes
// the prefix of samples whose timestamp is at or before the cutoff.
type SampleQueue interface {
	// Push appends the sample. It returns false only when a bounded queue
	// rejects the sample under its configured overflow policy.
	Push(s domain.Sample) bool
	// DrainUpTo removes and returns, in order, every queued sample with
	// Timestamp <= cutoff. Later samples stay queued.
	DrainUpTo(cutoff domain.TickTime) []domain.Sample
	Len() int
	Stats() QueueStats
}

// QueueStats is a point-in-time snapshot of queue occupancy.
type QueueStats struct {
	Depth     int
	HighWater int
	Dropped   uint64
}
