package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// ReplaySource feeds a recorded arrival trace into the pipeline, pacing
// emissions in wall time so a real frame clock sees the original delivery
// pattern. Trace files hold one arrival time per line, in units of the frame
// period; blank lines and '#' comments are skipped.
type ReplaySource struct {
	times  []float64
	period time.Duration
	speed  float64

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewReplaySource loads the trace at path. period is the frame period the
// trace times are expressed in; speed scales playback (2 = twice as fast).
func NewReplaySource(path string, period time.Duration, speed float64) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	times, err := ParseTrace(f)
	if err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}
	return NewReplaySourceFromTimes(times, period, speed)
}

// NewReplaySourceFromTimes builds a source from already parsed trace times.
func NewReplaySourceFromTimes(times []float64, period time.Duration, speed float64) (*ReplaySource, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("replay source: empty trace")
	}
	if period <= 0 {
		return nil, fmt.Errorf("replay source: period must be positive, got %s", period)
	}
	if speed <= 0 {
		speed = 1
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("replay source: trace time %f at line %d precedes %f", times[i], i+1, times[i-1])
		}
	}
	return &ReplaySource{times: times, period: period, speed: speed}, nil
}

// ParseTrace reads arrival times, one per line, in frame-period units.
func ParseTrace(r io.Reader) ([]float64, error) {
	var times []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		times = append(times, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return times, nil
}

// Len reports the number of samples the trace will emit.
func (s *ReplaySource) Len() int { return len(s.times) }

// Start replays the trace into out on a new goroutine and closes out when the
// trace ends or Stop is called. Sample timestamps are microseconds since
// Start, the same timeline a TickerClock started alongside it runs on.
func (s *ReplaySource) Start(out chan<- domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return fmt.Errorf("replay source: already started")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(out, s.stop, s.done)
	return nil
}

func (s *ReplaySource) run(out chan<- domain.Sample, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	var lastTS domain.TickTime
	for i, f := range s.times {
		target := time.Duration(f * float64(s.period) / s.speed)
		if wait := target - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-stop:
				return
			case <-timer.C:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}

		ts := domain.TickTime(time.Since(start).Microseconds())
		if ts < lastTS {
			ts = lastTS
		}
		lastTS = ts

		sample := domain.Sample{Timestamp: ts, Seq: uint64(i), Payload: f}
		select {
		case <-stop:
			return
		case out <- sample:
		}
	}
}

func (s *ReplaySource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	return nil
}

var _ ports.Source = (*ReplaySource)(nil)
