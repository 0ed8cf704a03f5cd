package dispatch

import (
	"testing"

	"github.com/frameflow/frameflow/internal/adapters/queue"
	"github.com/frameflow/frameflow/internal/domain"
)

func newSmoothDispatcher(t *testing.T) (*SmoothDispatcher, *countingConsumer) {
	t.Helper()
	sink := &countingConsumer{}
	core, err := New(queue.NewMemQueue(), sink)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return NewSmooth(core), sink
}

func TestSmoothPassesRegularInputThrough(t *testing.T) {
	d, sink := newSmoothDispatcher(t)

	// One sample per frame period: the hold-back never engages.
	for i := 0; i < 4; i++ {
		d.OnSample(domain.Sample{Timestamp: domain.TickTime(i)*10 + 5, Seq: uint64(i), Payload: i})
		d.OnTick(domain.TickTime(i+1) * 10)
	}

	if sink.frames != 4 || len(sink.payloads) != 4 {
		t.Fatalf("expected 4 frames and 4 deliveries, got %d and %d", sink.frames, len(sink.payloads))
	}
}

func TestSmoothHoldsBackSecondSampleOfBurst(t *testing.T) {
	d, sink := newSmoothDispatcher(t)

	d.OnSample(domain.Sample{Timestamp: 2, Seq: 0, Payload: 0})
	d.OnSample(domain.Sample{Timestamp: 7, Seq: 1, Payload: 1})

	d.OnTick(10)
	if len(sink.payloads) != 1 || sink.frames != 1 {
		t.Fatalf("first tick should deliver only the first sample, got %v", sink.payloads)
	}

	d.OnTick(20)
	if len(sink.payloads) != 2 || sink.frames != 2 {
		t.Fatalf("held sample should deliver one frame later, got %v", sink.payloads)
	}
	if sink.payloads[0] != 0 || sink.payloads[1] != 1 {
		t.Fatalf("order broken: %v", sink.payloads)
	}
}

func TestSmoothReleasesOlderHeldSampleOnThirdArrival(t *testing.T) {
	d, sink := newSmoothDispatcher(t)

	d.OnSample(domain.Sample{Timestamp: 1, Seq: 0, Payload: 0})
	d.OnSample(domain.Sample{Timestamp: 2, Seq: 1, Payload: 1})
	d.OnSample(domain.Sample{Timestamp: 3, Seq: 2, Payload: 2})

	d.OnTick(10)
	// Samples 0 and 1 were both forwarded before the tick; 2 is held.
	if len(sink.payloads) != 2 || sink.frames != 1 {
		t.Fatalf("expected first frame to carry two samples, got %v", sink.payloads)
	}

	d.OnTick(20)
	if len(sink.payloads) != 3 || sink.frames != 2 {
		t.Fatalf("held sample missing: %v", sink.payloads)
	}
	for i, p := range sink.payloads {
		if p != i {
			t.Fatalf("order broken: %v", sink.payloads)
		}
	}
}

func TestSmoothIdleTickKeepsHeldSample(t *testing.T) {
	d, sink := newSmoothDispatcher(t)

	d.OnSample(domain.Sample{Timestamp: 12, Seq: 0, Payload: 0})
	d.OnSample(domain.Sample{Timestamp: 13, Seq: 1, Payload: 1})

	// Neither sample is due yet: idle tick, hold-back unchanged.
	d.OnTick(10)
	if len(sink.payloads) != 0 {
		t.Fatalf("idle tick delivered: %v", sink.payloads)
	}

	d.OnTick(20)
	d.OnTick(30)
	if len(sink.payloads) != 2 || sink.frames != 2 {
		t.Fatalf("expected both samples across two frames, got %v in %d frames", sink.payloads, sink.frames)
	}
}

func TestSmoothStopDropsHeldSample(t *testing.T) {
	d, sink := newSmoothDispatcher(t)

	d.OnSample(domain.Sample{Timestamp: 1, Seq: 0, Payload: 0})
	d.OnSample(domain.Sample{Timestamp: 2, Seq: 1, Payload: 1})
	d.Stop()

	if d.OnSample(domain.Sample{Timestamp: 3, Seq: 2, Payload: 2}) {
		t.Fatalf("OnSample should reject after Stop")
	}
	d.OnTick(10)
	if len(sink.payloads) != 0 {
		t.Fatalf("no delivery expected after Stop, got %v", sink.payloads)
	}
	if d.Delivered() != 0 {
		t.Fatalf("unexpected delivered count %d", d.Delivered())
	}
}
