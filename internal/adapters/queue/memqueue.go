package queue

import (
	"sync"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// Overflow policies for a bounded MemQueue.
const (
	PolicyReject     = "reject"
	PolicyDropOldest = "drop_oldest"
)

// MemQueue is an in-memory FIFO of input samples. It is unbounded by default;
// when built with a capacity it applies the configured overflow policy and
// counts what it sheds. Arrival timestamps are monotonic, so the samples
// eligible for a drain are always a prefix.
type MemQueue struct {
	mu        sync.Mutex
	data      []domain.Sample
	cap       int
	onFull    string
	highWater int
	dropped   uint64
}

// NewMemQueue returns an unbounded queue.
func NewMemQueue() *MemQueue {
	return &MemQueue{}
}

// NewBoundedMemQueue returns a queue capped at capacity samples. onFull is
// PolicyReject or PolicyDropOldest; anything else behaves as PolicyReject.
func NewBoundedMemQueue(capacity int, onFull string) *MemQueue {
	return &MemQueue{
		data:   make([]domain.Sample, 0, capacity),
		cap:    capacity,
		onFull: onFull,
	}
}

func (q *MemQueue) Push(s domain.Sample) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cap > 0 && len(q.data) >= q.cap {
		if q.onFull != PolicyDropOldest {
			q.dropped++
			return false
		}
		q.data = q.data[1:]
		q.dropped++
	}

	q.data = append(q.data, s)
	if len(q.data) > q.highWater {
		q.highWater = len(q.data)
	}
	return true
}

func (q *MemQueue) DrainUpTo(cutoff domain.TickTime) []domain.Sample {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(q.data) && q.data[n].Timestamp <= cutoff {
		n++
	}
	if n == 0 {
		return nil
	}

	out := make([]domain.Sample, n)
	copy(out, q.data[:n])
	q.data = append(q.data[:0], q.data[n:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

func (q *MemQueue) Stats() ports.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ports.QueueStats{
		Depth:     len(q.data),
		HighWater: q.highWater,
		Dropped:   q.dropped,
	}
}

var _ ports.SampleQueue = (*MemQueue)(nil)
