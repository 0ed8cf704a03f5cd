package consumer

import (
	"errors"
	"sync"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// ErrChannelConsumerClosed is returned by TryFrame after Close.
var ErrChannelConsumerClosed = errors.New("frameflow: channel consumer closed")

// NewCallbackConsumer adapts two functions into a ports.Consumer so callers
// can plug arbitrary handlers without defining structs. Either function may be
// nil.
func NewCallbackConsumer(onSample func(payload any), onBeginFrame func()) ports.Consumer {
	return &callbackConsumer{onSample: onSample, onBeginFrame: onBeginFrame}
}

type callbackConsumer struct {
	onSample     func(any)
	onBeginFrame func()
}

func (c *callbackConsumer) DeliverSample(payload any) {
	if c.onSample != nil {
		c.onSample(payload)
	}
}

func (c *callbackConsumer) BeginFrame() {
	if c.onBeginFrame != nil {
		c.onBeginFrame()
	}
}

// ChannelConsumer groups each frame's payloads into one slice and exposes
// frames over a channel. BeginFrame is the frame boundary, so the batch is
// published there; a full channel drops the frame rather than blocking the
// rendering context.
type ChannelConsumer struct {
	mu      sync.Mutex
	pending []any
	ch      chan []any
	closed  chan struct{}
	once    sync.Once
	dropped uint64
}

func NewChannelConsumer(buffer int) *ChannelConsumer {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelConsumer{
		ch:     make(chan []any, buffer),
		closed: make(chan struct{}),
	}
}

// Frames is the stream of per-frame payload batches.
func (c *ChannelConsumer) Frames() <-chan []any {
	return c.ch
}

func (c *ChannelConsumer) DeliverSample(payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, payload)
}

func (c *ChannelConsumer) BeginFrame() {
	c.mu.Lock()
	frame := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(frame) == 0 {
		return
	}

	select {
	case <-c.closed:
	case c.ch <- frame:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

// DroppedFrames reports frames shed because the channel reader fell behind.
func (c *ChannelConsumer) DroppedFrames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *ChannelConsumer) Close() {
	c.once.Do(func() {
		close(c.closed)
		close(c.ch)
	})
}

var _ ports.Consumer = (*ChannelConsumer)(nil)

// Recorder accumulates FrameRecords emitted by the dispatcher. It is the
// observability artifact the property tests are written against.
type Recorder struct {
	mu      sync.Mutex
	records []domain.FrameRecord
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveFrame is the dispatcher's frame hook.
func (r *Recorder) ObserveFrame(rec domain.FrameRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []domain.FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.FrameRecord, len(r.records))
	copy(out, r.records)
	return out
}

// FramesProduced is the number of frames recorded.
func (r *Recorder) FramesProduced() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
