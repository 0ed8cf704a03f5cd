package consumer

import (
	"testing"

	"github.com/frameflow/frameflow/internal/domain"
)

func TestCallbackConsumerForwards(t *testing.T) {
	var payloads []any
	frames := 0
	c := NewCallbackConsumer(
		func(p any) { payloads = append(payloads, p) },
		func() { frames++ },
	)

	c.DeliverSample("a")
	c.DeliverSample("b")
	c.BeginFrame()

	if len(payloads) != 2 || payloads[0] != "a" || payloads[1] != "b" {
		t.Fatalf("unexpected payloads: %v", payloads)
	}
	if frames != 1 {
		t.Fatalf("expected 1 frame, got %d", frames)
	}
}

func TestCallbackConsumerNilHandlers(t *testing.T) {
	c := NewCallbackConsumer(nil, nil)
	c.DeliverSample("x")
	c.BeginFrame()
}

func TestChannelConsumerBatchesPerFrame(t *testing.T) {
	c := NewChannelConsumer(2)
	defer c.Close()

	c.DeliverSample(1)
	c.DeliverSample(2)
	c.BeginFrame()
	c.DeliverSample(3)
	c.BeginFrame()

	first := <-c.Frames()
	if len(first) != 2 || first[0] != 1 || first[1] != 2 {
		t.Fatalf("unexpected first frame: %v", first)
	}
	second := <-c.Frames()
	if len(second) != 1 || second[0] != 3 {
		t.Fatalf("unexpected second frame: %v", second)
	}
}

func TestChannelConsumerDropsWhenReaderSlow(t *testing.T) {
	c := NewChannelConsumer(1)
	defer c.Close()

	c.DeliverSample(1)
	c.BeginFrame()
	c.DeliverSample(2)
	c.BeginFrame()

	if got := c.DroppedFrames(); got != 1 {
		t.Fatalf("expected 1 dropped frame, got %d", got)
	}
	frame := <-c.Frames()
	if len(frame) != 1 || frame[0] != 1 {
		t.Fatalf("unexpected surviving frame: %v", frame)
	}
}

func TestChannelConsumerCloseIsIdempotent(t *testing.T) {
	c := NewChannelConsumer(1)
	c.Close()
	c.Close()

	if _, ok := <-c.Frames(); ok {
		t.Fatalf("expected closed frames channel")
	}
}

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder()
	r.ObserveFrame(domain.FrameRecord{Index: 0, Tick: 10, Delivered: 2, Cumulative: 2})
	r.ObserveFrame(domain.FrameRecord{Index: 1, Tick: 20, Delivered: 1, Cumulative: 3})

	if r.FramesProduced() != 2 {
		t.Fatalf("expected 2 frames, got %d", r.FramesProduced())
	}
	recs := r.Records()
	if recs[1].Cumulative != 3 || recs[1].Tick != 20 {
		t.Fatalf("unexpected record: %+v", recs[1])
	}
}
