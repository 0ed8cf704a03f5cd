package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/frameflow/frameflow/internal/domain"
)

func TestManualClockDrivesHandlerSynchronously(t *testing.T) {
	c := NewManualClock()

	var got []domain.TickTime
	if err := c.Start(func(tick domain.TickTime) {
		got = append(got, tick)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	c.Tick(10)
	c.Tick(20)

	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Fatalf("unexpected ticks: %v", got)
	}
}

func TestManualClockStopsDelivering(t *testing.T) {
	c := NewManualClock()

	ticks := 0
	if err := c.Start(func(domain.TickTime) { ticks++ }); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Tick(1)
	if err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	c.Tick(2)

	if ticks != 1 {
		t.Fatalf("expected 1 tick after stop, got %d", ticks)
	}
}

func TestManualClockCountsFrameRequests(t *testing.T) {
	c := NewManualClock()
	c.RequestFrame()
	c.RequestFrame()
	if got := c.FrameRequests(); got != 2 {
		t.Fatalf("expected 2 frame requests, got %d", got)
	}
}

func TestManualClockRejectsNilHandler(t *testing.T) {
	if err := NewManualClock().Start(nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}

func TestTickerClockEmitsStrictlyIncreasingTicks(t *testing.T) {
	c := NewTickerClock(time.Millisecond)

	var count atomic.Int64
	var last atomic.Int64
	err := c.Start(func(tick domain.TickTime) {
		if prev := last.Load(); tick <= prev {
			t.Errorf("tick %d not after %d", tick, prev)
		}
		last.Store(tick)
		count.Add(1)
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if count.Load() < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", count.Load())
	}
}

func TestTickerClockRejectsBadConfig(t *testing.T) {
	if err := NewTickerClock(0).Start(func(domain.TickTime) {}); err == nil {
		t.Fatalf("expected error for zero period")
	}
	if err := NewTickerClock(time.Millisecond).Start(nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}
