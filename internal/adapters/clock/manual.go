package clock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// ManualClock is a deterministic frame clock driven explicitly by the caller.
// It exists so that coalescing and latency properties can be checked without
// real-time waits.
type ManualClock struct {
	mu       sync.Mutex
	onTick   func(domain.TickTime)
	stopped  bool
	requests atomic.Uint64
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Start(onTick func(t domain.TickTime)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if onTick == nil {
		return fmt.Errorf("manual clock: nil tick handler")
	}
	c.onTick = onTick
	c.stopped = false
	return nil
}

func (c *ManualClock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}

// Tick invokes the handler synchronously with the given tick time.
func (c *ManualClock) Tick(t domain.TickTime) {
	c.mu.Lock()
	handler := c.onTick
	stopped := c.stopped
	c.mu.Unlock()

	if stopped || handler == nil {
		return
	}
	handler(t)
}

func (c *ManualClock) RequestFrame() {
	c.requests.Add(1)
}

// FrameRequests reports how many times the dispatcher hinted that a frame is
// wanted. Tests use it to verify the latch fires the hint once per burst.
func (c *ManualClock) FrameRequests() uint64 {
	return c.requests.Load()
}

var _ ports.FrameClock = (*ManualClock)(nil)
