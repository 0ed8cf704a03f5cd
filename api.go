package frameflow

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	base "github.com/frameflow/frameflow/pkg/frameflow"
)

// Re-exported errors for convenience.
var (
	ErrAlreadyStarted        = base.ErrAlreadyStarted
	ErrChannelConsumerClosed = base.ErrChannelConsumerClosed
)

// Type aliases so consumers can import github.com/frameflow/frameflow directly.
type (
	Config          = base.Config
	PipelineConfig  = base.PipelineConfig
	QueueConfig     = base.QueueConfig
	MetricsConfig   = base.MetricsConfig
	JournalConfig   = base.JournalConfig
	ReplayConfig    = base.ReplayConfig
	Duration        = base.Duration
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Sample          = base.Sample
	TickTime        = base.TickTime
	FrameRecord     = base.FrameRecord
	SampleQueue     = base.SampleQueue
	QueueStats      = base.QueueStats
	FrameClock      = base.FrameClock
	Consumer        = base.Consumer
	Source          = base.Source
	Journal         = base.Journal
	Observability   = base.Observability
	Field           = base.Field
	Policy          = base.Policy
	ManualClock     = base.ManualClock
	TickerClock     = base.TickerClock
	ChannelConsumer = base.ChannelConsumer
	Recorder        = base.Recorder
	ReplaySource    = base.ReplaySource
	PostgresJournal = base.PostgresJournal
	PromObs         = base.PromObs
)

// Queue overflow policies.
const (
	PolicyReject     = base.PolicyReject
	PolicyDropOldest = base.PolicyDropOldest
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithSampleQueue(q SampleQueue) RuntimeOption {
	return base.WithSampleQueue(q)
}

func WithClock(c FrameClock) RuntimeOption {
	return base.WithClock(c)
}

func WithConsumer(c Consumer) RuntimeOption {
	return base.WithConsumer(c)
}

func WithSource(s Source) RuntimeOption {
	return base.WithSource(s)
}

func WithJournal(j Journal) RuntimeOption {
	return base.WithJournal(j)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithFrameObserver(fn func(FrameRecord)) RuntimeOption {
	return base.WithFrameObserver(fn)
}

// Queue adapters.
func NewMemQueue() SampleQueue {
	return base.NewMemQueue()
}

func NewBoundedMemQueue(capacity int, onFull string) SampleQueue {
	return base.NewBoundedMemQueue(capacity, onFull)
}

// Clock adapters.
func NewManualClock() *ManualClock {
	return base.NewManualClock()
}

func NewTickerClock(period time.Duration) *TickerClock {
	return base.NewTickerClock(period)
}

// Consumer adapters.
func NewCallbackConsumer(onSample func(payload any), onBeginFrame func()) Consumer {
	return base.NewCallbackConsumer(onSample, onBeginFrame)
}

func NewChannelConsumer(buffer int) *ChannelConsumer {
	return base.NewChannelConsumer(buffer)
}

func NewRecorder() *Recorder {
	return base.NewRecorder()
}

// Sources and journals.
func NewReplaySource(path string, period time.Duration, speed float64) (*ReplaySource, error) {
	return base.NewReplaySource(path, period, speed)
}

func NewPostgresJournal(db *sql.DB, table string) *PostgresJournal {
	return base.NewPostgresJournal(db, table)
}

// Observability.
func NewPromObs(log zerolog.Logger) *PromObs {
	return base.NewPromObs(log)
}
