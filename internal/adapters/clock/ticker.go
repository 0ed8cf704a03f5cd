package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// TickerClock is a free-running frame clock on a time.Ticker. Tick times are
// microseconds elapsed since Start, so one frame period apart in the ideal
// case; ticker jitter shifts individual ticks but never reorders them.
//
// RequestFrame is a no-op: ticks occur unconditionally at the display cadence,
// which is the production arrangement the dispatcher's latch hint assumes.
type TickerClock struct {
	period time.Duration

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

func NewTickerClock(period time.Duration) *TickerClock {
	return &TickerClock{period: period}
}

func (c *TickerClock) Start(onTick func(t domain.TickTime)) error {
	if onTick == nil {
		return fmt.Errorf("ticker clock: nil tick handler")
	}
	if c.period <= 0 {
		return fmt.Errorf("ticker clock: period must be positive, got %s", c.period)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return fmt.Errorf("ticker clock: already started")
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.run(onTick, c.stop, c.done)
	return nil
}

func (c *TickerClock) run(onTick func(domain.TickTime), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	start := time.Now()
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	var last domain.TickTime
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			t := domain.TickTime(now.Sub(start).Microseconds())
			// A coarse wall clock can hand consecutive ticks the same
			// microsecond reading; the dispatcher requires strictly
			// increasing tick times.
			if t <= last {
				t = last + 1
			}
			last = t
			onTick(t)
		}
	}
}

func (c *TickerClock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil || c.closed {
		return nil
	}
	c.closed = true
	close(c.stop)
	<-c.done
	return nil
}

func (c *TickerClock) RequestFrame() {}

var _ ports.FrameClock = (*TickerClock)(nil)
