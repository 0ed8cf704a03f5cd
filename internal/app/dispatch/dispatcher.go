// Package dispatch implements the frame-synchronized input dispatcher: it
// reconciles asynchronously arriving input samples with the periodic frame
// clock so the consumer sees every sample within one frame period of arrival
// while a burst of samples inside one tick interval produces exactly one
// frame.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// Metric names published through the observability port.
const (
	MetricSamplesDelivered = "frameflow_samples_delivered_total"
	MetricFramesProduced   = "frameflow_frames_produced_total"
	MetricSamplesRejected  = "frameflow_samples_rejected_total"
	MetricFrameBatch       = "frameflow_frame_batch_seconds"
)

// Ingress is the surface shared by Dispatcher and SmoothDispatcher, as seen
// by the input source and frame clock.
type Ingress interface {
	OnSample(s domain.Sample) bool
	OnTick(t domain.TickTime)
	Stop()
	Delivered() uint64
	Frames() uint64
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithRequestFrame installs the hint fired when the latch arms. It runs
// outside the dispatcher lock and must not call back into the consumer.
func WithRequestFrame(fn func()) Option {
	return func(d *Dispatcher) { d.requestFrame = fn }
}

// WithObservability routes dispatcher counters and logs to obs.
func WithObservability(obs ports.Observability) Option {
	return func(d *Dispatcher) { d.obs = obs }
}

// WithFrameObserver installs a hook invoked with a FrameRecord after each
// produced frame, on the tick context.
func WithFrameObserver(fn func(domain.FrameRecord)) Option {
	return func(d *Dispatcher) { d.onFrame = fn }
}

// Dispatcher owns the sample queue and the redraw-request latch. OnSample and
// OnTick may race from their respective producer contexts; one mutex
// serializes queue and latch access and is never held across consumer
// callbacks.
type Dispatcher struct {
	consumer     ports.Consumer
	queue        ports.SampleQueue
	requestFrame func()
	obs          ports.Observability
	onFrame      func(domain.FrameRecord)

	mu         sync.Mutex
	latch      bool
	stopped    bool
	lastSample domain.TickTime
	haveSample bool
	lastTick   domain.TickTime
	haveTick   bool
	delivered  uint64
	frames     uint64
}

// New builds a Dispatcher draining queue into consumer. Both are required.
func New(queue ports.SampleQueue, consumer ports.Consumer, opts ...Option) (*Dispatcher, error) {
	if queue == nil {
		return nil, fmt.Errorf("dispatch: sample queue is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("dispatch: consumer is required")
	}
	d := &Dispatcher{queue: queue, consumer: consumer}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// OnSample enqueues one input sample. It never blocks beyond the critical
// section and never invokes the consumer. The return value is false when the
// dispatcher is stopped or the queue rejected the sample under its overflow
// policy.
//
// Timestamps must be monotonically non-decreasing across calls; a regression
// is a collaborator bug that would invalidate every ordering guarantee, so it
// panics rather than reorders.
func (d *Dispatcher) OnSample(s domain.Sample) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	if d.haveSample && s.Timestamp < d.lastSample {
		last := d.lastSample
		d.mu.Unlock()
		panic(fmt.Sprintf("dispatch: sample timestamp went backwards: %d after %d", s.Timestamp, last))
	}
	d.lastSample = s.Timestamp
	d.haveSample = true

	if !d.queue.Push(s) {
		d.mu.Unlock()
		if d.obs != nil {
			d.obs.IncCounter(MetricSamplesRejected, 1)
		}
		return false
	}

	arm := !d.latch
	d.latch = true
	d.mu.Unlock()

	if arm && d.requestFrame != nil {
		d.requestFrame()
	}
	return true
}

// OnTick drains every sample that arrived at or before t and delivers the
// batch to the consumer, followed by exactly one BeginFrame. An empty batch is
// an idle tick: no consumer call, no latch change. Tick times must be strictly
// increasing.
func (d *Dispatcher) OnTick(t domain.TickTime) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.haveTick && t <= d.lastTick {
		last := d.lastTick
		d.mu.Unlock()
		panic(fmt.Sprintf("dispatch: tick time not strictly increasing: %d after %d", t, last))
	}
	d.lastTick = t
	d.haveTick = true

	batch := d.queue.DrainUpTo(t)
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	start := time.Now()
	for _, s := range batch {
		d.consumer.DeliverSample(s.Payload)
	}
	d.consumer.BeginFrame()

	d.mu.Lock()
	d.delivered += uint64(len(batch))
	d.frames++
	rec := domain.FrameRecord{
		Index:      d.frames - 1,
		Tick:       t,
		Delivered:  len(batch),
		Cumulative: d.delivered,
	}
	d.latch = false
	// Samples that arrived while the consumer ran saw the latch armed and
	// skipped the hint. Re-arm for them so on-demand clocks keep ticking.
	rearm := d.queue.Len() > 0
	if rearm {
		d.latch = true
	}
	d.mu.Unlock()

	if d.obs != nil {
		d.obs.IncCounter(MetricSamplesDelivered, float64(len(batch)))
		d.obs.IncCounter(MetricFramesProduced, 1)
		d.obs.ObserveLatency(MetricFrameBatch, time.Since(start).Seconds())
	}
	if d.onFrame != nil {
		d.onFrame(rec)
	}
	if rearm && d.requestFrame != nil {
		d.requestFrame()
	}
}

// Stop rejects further samples. A tick in flight completes its current batch;
// later ticks are no-ops. Samples still queued are never drained.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	if d.obs != nil {
		d.obs.LogInfo("dispatcher_stopped",
			ports.Field{Key: "frames", Value: d.Frames()},
			ports.Field{Key: "delivered", Value: d.Delivered()})
	}
}

// Delivered is the total number of samples handed to the consumer.
func (d *Dispatcher) Delivered() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delivered
}

// Frames is the total number of frames produced.
func (d *Dispatcher) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Pending reports whether the latch is armed.
func (d *Dispatcher) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latch
}
