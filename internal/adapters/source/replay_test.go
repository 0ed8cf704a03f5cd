package source

import (
	"strings"
	"testing"
	"time"

	"github.com/frameflow/frameflow/internal/domain"
)

func TestParseTrace(t *testing.T) {
	input := `# recorded on device
0.15
1.077

2.173
`
	times, err := ParseTrace(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(times) != 3 || times[0] != 0.15 || times[2] != 2.173 {
		t.Fatalf("unexpected times: %v", times)
	}
}

func TestParseTraceRejectsGarbage(t *testing.T) {
	if _, err := ParseTrace(strings.NewReader("0.1\nnot-a-number\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewReplaySourceValidation(t *testing.T) {
	if _, err := NewReplaySourceFromTimes(nil, time.Millisecond, 1); err == nil {
		t.Fatalf("expected error for empty trace")
	}
	if _, err := NewReplaySourceFromTimes([]float64{1}, 0, 1); err == nil {
		t.Fatalf("expected error for zero period")
	}
	if _, err := NewReplaySourceFromTimes([]float64{2, 1}, time.Millisecond, 1); err == nil {
		t.Fatalf("expected error for decreasing trace")
	}
}

func TestReplaySourceEmitsAllSamplesInOrder(t *testing.T) {
	src, err := NewReplaySourceFromTimes([]float64{0.1, 0.5, 1.2, 1.2, 2.8}, time.Millisecond, 1)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	out := make(chan domain.Sample, 8)
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}

	var got []domain.Sample
	for s := range out {
		got = append(got, s)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(got))
	}
	for i, s := range got {
		if s.Seq != uint64(i) {
			t.Fatalf("sequence broken: %+v", got)
		}
		if i > 0 && s.Timestamp < got[i-1].Timestamp {
			t.Fatalf("timestamps regressed: %+v", got)
		}
	}
}

func TestReplaySourceStopInterrupts(t *testing.T) {
	src, err := NewReplaySourceFromTimes([]float64{0, 1000}, time.Second, 1)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	out := make(chan domain.Sample, 1)
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}

	<-out // first sample fires immediately
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = src.Stop()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not interrupt the long wait")
	}
}

func TestReplaySourceDoubleStartRejected(t *testing.T) {
	src, err := NewReplaySourceFromTimes([]float64{0.1}, time.Millisecond, 1)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	out := make(chan domain.Sample, 1)
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := src.Start(out); err == nil {
		t.Fatalf("expected second start to fail")
	}
	_ = src.Stop()
}
