package dispatch

import (
	"sync"

	"github.com/frameflow/frameflow/internal/domain"
)

// SmoothDispatcher wraps a Dispatcher and regularizes input that is delivered
// faster than the frame cadence. While a delivered sample's frame is still in
// flight, at most one newer sample is held back and released right after that
// frame, so a burst of two samples inside one tick interval lands in two
// consecutive frames instead of one. Irregular delivery with under one frame
// of random latency then misses at most one frame; the cost is at most one
// sample of added delay when input outpaces the clock.
//
// With input arriving at the frame cadence or slower the hold-back never
// engages and behavior is identical to the wrapped Dispatcher.
type SmoothDispatcher struct {
	core *Dispatcher

	mu          sync.Mutex
	pending     domain.Sample
	havePending bool
	inProgress  bool
	stopped     bool
}

// NewSmooth wraps core with the hold-back policy.
func NewSmooth(core *Dispatcher) *SmoothDispatcher {
	return &SmoothDispatcher{core: core}
}

// OnSample forwards the sample to the core dispatcher, or holds it back if a
// previously forwarded sample's frame has not been produced yet. A sample
// arriving while one is already held releases the held sample first, so
// forwarding order always matches arrival order.
func (d *SmoothDispatcher) OnSample(s domain.Sample) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.inProgress {
		if d.havePending {
			if !d.core.OnSample(d.pending) {
				// Core is stopped or shedding; don't hold more input.
				d.havePending = false
				d.inProgress = false
				return false
			}
		}
		d.pending = s
		d.havePending = true
		return true
	}

	ok := d.core.OnSample(s)
	if ok {
		d.inProgress = true
	}
	return ok
}

// OnTick drives the core dispatcher. If the tick produced a frame, the
// held-back sample (if any) is released for the next frame; otherwise the
// in-flight marker clears and the next arrival forwards immediately.
func (d *SmoothDispatcher) OnTick(t domain.TickTime) {
	framesBefore := d.core.Frames()
	d.core.OnTick(t)
	if d.core.Frames() == framesBefore {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inProgress {
		return
	}
	if d.havePending {
		released := d.core.OnSample(d.pending)
		d.havePending = false
		if !released {
			d.inProgress = false
		}
	} else {
		d.inProgress = false
	}
}

// Stop stops the underlying dispatcher. A held-back sample is dropped with the
// rest of the undrained queue.
func (d *SmoothDispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.havePending = false
	d.mu.Unlock()
	d.core.Stop()
}

// Delivered reports the wrapped dispatcher's total delivered count.
func (d *SmoothDispatcher) Delivered() uint64 { return d.core.Delivered() }

// Frames reports the wrapped dispatcher's produced frame count.
func (d *SmoothDispatcher) Frames() uint64 { return d.core.Frames() }
