package frameflow

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/frameflow/frameflow/internal/adapters/clock"
	"github.com/frameflow/frameflow/internal/adapters/consumer"
	"github.com/frameflow/frameflow/internal/adapters/journal"
	"github.com/frameflow/frameflow/internal/adapters/observability"
	"github.com/frameflow/frameflow/internal/adapters/queue"
	"github.com/frameflow/frameflow/internal/adapters/source"
	"github.com/frameflow/frameflow/internal/app/config"
	"github.com/frameflow/frameflow/internal/domain"
	"github.com/frameflow/frameflow/internal/ports"
)

// Sample is one input event flowing through the pipeline. It mirrors the
// internal domain type so custom adapters can reference it.
type Sample = domain.Sample

// TickTime is a unitless timestamp on the frame clock's timeline.
type TickTime = domain.TickTime

// FrameRecord describes one produced frame for observability and journaling.
type FrameRecord = domain.FrameRecord

// SampleQueue buffers samples between arrival and the next tick.
type SampleQueue = ports.SampleQueue

// QueueStats is a snapshot of queue occupancy.
type QueueStats = ports.QueueStats

// FrameClock is the injectable tick source.
type FrameClock = ports.FrameClock

// Consumer is the script-runtime boundary receiving deliveries and frame signals.
type Consumer = ports.Consumer

// Source streams input samples into the pipeline.
type Source = ports.Source

// Journal persists per-frame delivery records.
type Journal = ports.Journal

// Observability emits metrics and structured logs for the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Policy carries the integrator's queue capacity decisions.
type Policy = ports.Policy

// Config is the root YAML configuration.
type Config = config.Config

// ErrChannelConsumerClosed is returned once a ChannelConsumer is closed.
var ErrChannelConsumerClosed = consumer.ErrChannelConsumerClosed

// Concrete adapters, aliased so callers never import internal packages.
type (
	// ManualClock is the test clock driven by explicit Tick calls.
	ManualClock = clock.ManualClock
	// TickerClock is the production free-running clock.
	TickerClock = clock.TickerClock
	// ChannelConsumer exposes per-frame payload batches over a channel.
	ChannelConsumer = consumer.ChannelConsumer
	// Recorder accumulates FrameRecords for inspection.
	Recorder = consumer.Recorder
	// ReplaySource replays a recorded arrival trace in wall time.
	ReplaySource = source.ReplaySource
	// PostgresJournal persists frame records via database/sql.
	PostgresJournal = journal.PostgresJournal
	// PromObs is the Prometheus + zerolog observability backend.
	PromObs = observability.PromObs
)

type (
	// PipelineConfig sets the frame period and smoothing mode.
	PipelineConfig = config.PipelineConfig
	// QueueConfig sets queue capacity and overflow policy.
	QueueConfig = config.QueueConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// JournalConfig configures the Postgres frame journal.
	JournalConfig = config.JournalConfig
	// ReplayConfig configures trace playback.
	ReplayConfig = config.ReplayConfig
	// Duration is the YAML-friendly duration wrapper used in Config.
	Duration = config.Duration
)

// LoadConfig loads YAML from disk, applies defaults, and validates.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Queue overflow policies.
const (
	PolicyReject     = queue.PolicyReject
	PolicyDropOldest = queue.PolicyDropOldest
)

// NewMemQueue returns the default unbounded in-memory sample queue.
func NewMemQueue() SampleQueue { return queue.NewMemQueue() }

// NewBoundedMemQueue returns a capped queue with the given overflow policy.
func NewBoundedMemQueue(capacity int, onFull string) SampleQueue {
	return queue.NewBoundedMemQueue(capacity, onFull)
}

// NewManualClock returns a test clock driven by explicit Tick calls.
func NewManualClock() *ManualClock { return clock.NewManualClock() }

// NewTickerClock returns the production free-running clock.
func NewTickerClock(period time.Duration) *TickerClock {
	return clock.NewTickerClock(period)
}

// NewCallbackConsumer adapts two functions into a Consumer.
func NewCallbackConsumer(onSample func(payload any), onBeginFrame func()) Consumer {
	return consumer.NewCallbackConsumer(onSample, onBeginFrame)
}

// NewChannelConsumer exposes per-frame payload batches over a channel.
func NewChannelConsumer(buffer int) *ChannelConsumer {
	return consumer.NewChannelConsumer(buffer)
}

// NewRecorder builds a frame observer that accumulates FrameRecords.
func NewRecorder() *Recorder { return consumer.NewRecorder() }

// NewReplaySource replays a recorded arrival trace from disk.
func NewReplaySource(path string, period time.Duration, speed float64) (*ReplaySource, error) {
	return source.NewReplaySource(path, period, speed)
}

// NewPostgresJournal journals frame records into the given table.
func NewPostgresJournal(db *sql.DB, table string) *PostgresJournal {
	return journal.NewPostgresJournal(db, table)
}

// NewPromObs builds the default Prometheus + zerolog observability backend.
// It registers its collectors on the default Prometheus registry, so build it
// at most once per process.
func NewPromObs(log zerolog.Logger) *PromObs {
	return observability.NewPromObs(log)
}
