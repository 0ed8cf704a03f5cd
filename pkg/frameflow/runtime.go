package frameflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/frameflow/frameflow/internal/adapters/clock"
	"github.com/frameflow/frameflow/internal/adapters/consumer"
	"github.com/frameflow/frameflow/internal/adapters/journal"
	"github.com/frameflow/frameflow/internal/adapters/observability"
	"github.com/frameflow/frameflow/internal/adapters/queue"
	"github.com/frameflow/frameflow/internal/adapters/source"
	"github.com/frameflow/frameflow/internal/app/config"
	"github.com/frameflow/frameflow/internal/app/dispatch"
	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// ErrAlreadyStarted is returned by Start when the runtime is running.
var ErrAlreadyStarted = errors.New("frameflow: runtime already started")

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	queue         ports.SampleQueue
	clock         ports.FrameClock
	consumer      ports.Consumer
	source        ports.Source
	journal       ports.Journal
	observability ports.Observability
	frameObserver func(domain.FrameRecord)
}

// WithSampleQueue swaps the in-memory queue for a caller-provided implementation.
func WithSampleQueue(q SampleQueue) RuntimeOption {
	return func(o *runtimeOverrides) { o.queue = q }
}

// WithClock injects a custom frame clock (a ManualClock in tests, a platform
// vsync bridge in embedders).
func WithClock(c FrameClock) RuntimeOption {
	return func(o *runtimeOverrides) { o.clock = c }
}

// WithConsumer injects the script-runtime boundary that receives deliveries.
func WithConsumer(c Consumer) RuntimeOption {
	return func(o *runtimeOverrides) { o.consumer = c }
}

// WithSource injects a custom input source (platform bridge, simulator, replay).
func WithSource(s Source) RuntimeOption {
	return func(o *runtimeOverrides) { o.source = s }
}

// WithJournal injects a custom frame journal.
func WithJournal(j Journal) RuntimeOption {
	return func(o *runtimeOverrides) { o.journal = j }
}

// WithObservability replaces the default Prometheus-based backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.observability = obs }
}

// WithFrameObserver registers a callback invoked with every FrameRecord, on
// the tick goroutine. A Recorder fits here.
func WithFrameObserver(fn func(FrameRecord)) RuntimeOption {
	return func(o *runtimeOverrides) { o.frameObserver = fn }
}

// Runtime wires a complete pipeline: source → dispatcher → consumer, with the
// frame clock driving delivery and optional journaling and metrics around it.
type Runtime struct {
	cfg      *config.Config
	obs      ports.Observability
	queue    ports.SampleQueue
	clock    ports.FrameClock
	consumer ports.Consumer
	source   ports.Source
	journal  ports.Journal
	db       *sql.DB

	ingress dispatch.Ingress

	mu          sync.Mutex
	started     bool
	epoch       time.Time
	seq         atomic.Uint64
	lastTS      atomic.Int64
	sampleCh    chan domain.Sample
	frameCh     chan domain.FrameRecord
	journalStop chan struct{}
	gaugeStopCh chan struct{}
	metricsSrv  *http.Server
	eg          *errgroup.Group
}

// NewRuntime assembles a Runtime from configuration plus overrides. The
// returned runtime is idle until Start or Run.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(zerolog.New(os.Stderr).With().Timestamp().Logger())
	}

	q := overrides.queue
	if q == nil {
		pol := cfg.QueuePolicy()
		if pol.MaxQueueDepth > 0 {
			q = queue.NewBoundedMemQueue(pol.MaxQueueDepth, pol.OnQueueFull)
		} else {
			q = queue.NewMemQueue()
		}
	}

	clk := overrides.clock
	if clk == nil {
		clk = clock.NewTickerClock(cfg.Pipeline.FramePeriod.Std())
	}

	cons := overrides.consumer
	if cons == nil {
		cons = consumer.NewCallbackConsumer(nil, nil)
	}

	var (
		db  *sql.DB
		jnl ports.Journal
		err error
	)
	if overrides.journal != nil {
		jnl = overrides.journal
	} else if cfg.Journal.ConnString != "" {
		db, err = sql.Open("postgres", cfg.Journal.ConnString)
		if err != nil {
			return nil, err
		}
		jnl = journal.NewPostgresJournal(db, cfg.Journal.Table)
	}

	src := overrides.source
	if src == nil && cfg.Replay.Path != "" {
		src, err = source.NewReplaySource(cfg.Replay.Path, cfg.Pipeline.FramePeriod.Std(), cfg.Replay.Speed)
		if err != nil {
			return nil, err
		}
	}

	r := &Runtime{
		cfg:      cfg,
		obs:      obs,
		queue:    q,
		clock:    clk,
		consumer: cons,
		source:   src,
		journal:  jnl,
		db:       db,
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithRequestFrame(clk.RequestFrame),
		dispatch.WithObservability(obs),
	}
	observeFrame := overrides.frameObserver
	if jnl != nil {
		r.frameCh = make(chan domain.FrameRecord, cfg.Journal.BufferSize)
		if user := observeFrame; user != nil {
			observeFrame = func(rec domain.FrameRecord) {
				r.observeFrame(rec)
				user(rec)
			}
		} else {
			observeFrame = r.observeFrame
		}
	}
	if observeFrame != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithFrameObserver(observeFrame))
	}

	core, err := dispatch.New(q, cons, dispatchOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.Pipeline.Smoothing {
		r.ingress = dispatch.NewSmooth(core)
	} else {
		r.ingress = core
	}

	return r, nil
}

// Start launches the clock, source pump, journal writer, gauge recorder, and
// metrics server. It returns immediately; call Run to block on a context.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true
	r.epoch = time.Now()
	r.eg = new(errgroup.Group)

	if err := r.clock.Start(r.ingress.OnTick); err != nil {
		return err
	}

	if r.source != nil {
		r.sampleCh = make(chan domain.Sample, 1024)
		if err := r.source.Start(r.sampleCh); err != nil {
			return err
		}
		ch := r.sampleCh
		r.eg.Go(func() error {
			for s := range ch {
				r.ingress.OnSample(s)
			}
			return nil
		})
	}

	if r.journal != nil {
		r.journalStop = make(chan struct{})
		stop := r.journalStop
		r.eg.Go(func() error {
			r.runJournal(stop)
			return nil
		})
	}

	r.gaugeStopCh = make(chan struct{})
	gaugeStop := r.gaugeStopCh
	r.eg.Go(func() error {
		r.recordQueueGauges(gaugeStop, time.Second)
		return nil
	})

	r.startMetrics()

	r.obs.LogInfo("pipeline_started",
		ports.Field{Key: "frame_period", Value: r.cfg.Pipeline.FramePeriod.String()},
		ports.Field{Key: "smoothing", Value: r.cfg.Pipeline.Smoothing})
	return nil
}

// Run starts the runtime and blocks until the context is cancelled, then
// attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Dispatch submits an externally produced payload, stamping it with the
// runtime's own monotonic timeline. Use either Dispatch or a Source for a
// given runtime, not both: timestamps must stay monotonic across producers.
func (r *Runtime) Dispatch(payload any) bool {
	ts := time.Since(r.epoch).Microseconds()
	for {
		last := r.lastTS.Load()
		if ts < last {
			ts = last
		}
		if r.lastTS.CompareAndSwap(last, ts) {
			break
		}
	}
	return r.ingress.OnSample(domain.Sample{
		Timestamp: ts,
		Seq:       r.seq.Add(1) - 1,
		Payload:   payload,
	})
}

// Delivered is the total number of samples handed to the consumer.
func (r *Runtime) Delivered() uint64 { return r.ingress.Delivered() }

// Frames is the total number of frames produced.
func (r *Runtime) Frames() uint64 { return r.ingress.Frames() }

// QueueStats snapshots the sample queue.
func (r *Runtime) QueueStats() QueueStats { return r.queue.Stats() }

// Shutdown drains and stops: the source stops first, the clock stops, the
// dispatcher rejects further input, and the journal flushes what it has.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	r.started = false

	var errs []error

	if r.source != nil {
		if err := r.source.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.clock.Stop(); err != nil {
		errs = append(errs, err)
	}
	r.ingress.Stop()

	if r.journalStop != nil {
		close(r.journalStop)
		r.journalStop = nil
	}
	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.eg.Wait()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
		r.db = nil
	}

	r.obs.LogInfo("pipeline_stopped",
		ports.Field{Key: "frames", Value: r.ingress.Frames()},
		ports.Field{Key: "delivered", Value: r.ingress.Delivered()})
	return errors.Join(errs...)
}

// observeFrame runs on the tick context; it must never block delivery, so a
// full journal buffer sheds the record and counts it.
func (r *Runtime) observeFrame(rec domain.FrameRecord) {
	select {
	case r.frameCh <- rec:
	default:
		r.obs.IncCounter("frameflow_journal_records_dropped_total", 1)
	}
}

func (r *Runtime) runJournal(stop <-chan struct{}) {
	flushEvery := r.cfg.Journal.FlushInterval.Std()
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]domain.FrameRecord, 0, 128)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.journal.WriteFrames(batch); err != nil {
			r.obs.LogError("journal_write_failed", err,
				ports.Field{Key: "records", Value: len(batch)})
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-r.frameCh:
			batch = append(batch, rec)
			if len(batch) >= cap(batch) {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-stop:
			for {
				select {
				case rec := <-r.frameCh:
					batch = append(batch, rec)
					continue
				default:
				}
				break
			}
			flush()
			return
		}
	}
}

func (r *Runtime) recordQueueGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := r.queue.Stats()
			r.obs.SetGauge("frameflow_queue_depth", float64(stats.Depth))
			r.obs.SetGauge("frameflow_queue_high_water", float64(stats.HighWater))
		}
	}
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	srv := r.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_exited", err)
		}
	}()
}
