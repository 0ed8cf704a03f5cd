package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/frameflow/frameflow/internal/ports"
)

// PromObs publishes pipeline metrics to Prometheus and structured logs
// through zerolog. Metric names are fixed at construction; unknown names are
// ignored so callers can share one Observability across adapters.
type PromObs struct {
	log      zerolog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(log zerolog.Logger) *PromObs {
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameflow_samples_delivered_total",
		Help: "Total input samples handed to the consumer.",
	})
	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameflow_frames_produced_total",
		Help: "Total frames produced by the dispatcher.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameflow_samples_rejected_total",
		Help: "Samples shed by a capped queue's overflow policy.",
	})
	journalDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frameflow_journal_records_dropped_total",
		Help: "Frame records lost because the journal writer fell behind.",
	})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameflow_queue_depth",
		Help: "Samples currently buffered awaiting the next tick.",
	})
	highWater := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frameflow_queue_high_water",
		Help: "Deepest the sample queue has been since start.",
	})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "frameflow_frame_batch_seconds",
		Help:    "Wall time spent delivering one frame's batch to the consumer.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
	})

	prometheus.MustRegister(delivered, frames, rejected, journalDropped, depth, highWater, batch)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			"frameflow_samples_delivered_total":       delivered,
			"frameflow_frames_produced_total":         frames,
			"frameflow_samples_rejected_total":        rejected,
			"frameflow_journal_records_dropped_total": journalDropped,
		},
		gauges: map[string]prometheus.Gauge{
			"frameflow_queue_depth":      depth,
			"frameflow_queue_high_water": highWater,
		},
		histos: map[string]prometheus.Observer{
			"frameflow_frame_batch_seconds": batch,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.emit(p.log.Info(), nil, msg, fields)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.emit(p.log.Error(), err, msg, fields)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.emit(p.log.WithLevel(zerolog.FatalLevel), err, msg, fields)
}

func (p *PromObs) emit(ev *zerolog.Event, err error, msg string, fields []ports.Field) {
	if err != nil {
		ev = ev.Err(err)
	}
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

var _ ports.Observability = (*PromObs)(nil)
