package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frameflow/frameflow/internal/adapters/queue"
	"github.com/frameflow/frameflow/internal/ports"
)

// Duration is a time.Duration that unmarshals from YAML strings like "16.667ms"
// as well as plain nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Queue    QueueConfig    `yaml:"queue"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Journal  JournalConfig  `yaml:"journal"`
	Replay   ReplayConfig   `yaml:"replay"`
}

type PipelineConfig struct {
	// FramePeriod is the tick cadence of the production clock.
	FramePeriod Duration `yaml:"frame_period"`
	// Smoothing spreads faster-than-vsync input across consecutive frames
	// instead of coalescing a whole burst into one.
	Smoothing bool `yaml:"smoothing"`
}

type QueueConfig struct {
	// MaxDepth caps the sample queue; 0 keeps it unbounded.
	MaxDepth int    `yaml:"max_depth"`
	OnFull   string `yaml:"on_full"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type JournalConfig struct {
	// ConnString enables the Postgres frame journal when set.
	ConnString    string        `yaml:"conn_string"`
	Table         string        `yaml:"table"`
	FlushInterval Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Pipeline.FramePeriod == 0 {
		// 60Hz.
		c.Pipeline.FramePeriod = Duration(16667 * time.Microsecond)
	}
	if c.Queue.OnFull == "" {
		c.Queue.OnFull = queue.PolicyReject
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Journal.Table == "" {
		c.Journal.Table = "frame_records"
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = Duration(250 * time.Millisecond)
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = 256
	}
	if c.Replay.Speed == 0 {
		c.Replay.Speed = 1
	}
}

func (c *Config) Validate() error {
	if c.Pipeline.FramePeriod <= 0 {
		return fmt.Errorf("pipeline.frame_period must be positive")
	}
	if c.Queue.MaxDepth < 0 {
		return fmt.Errorf("queue.max_depth must not be negative")
	}
	switch c.Queue.OnFull {
	case queue.PolicyReject, queue.PolicyDropOldest:
	default:
		return fmt.Errorf("queue.on_full must be %q or %q, got %q",
			queue.PolicyReject, queue.PolicyDropOldest, c.Queue.OnFull)
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.Journal.ConnString != "" && c.Journal.Table == "" {
		return fmt.Errorf("journal.table is required when journal.conn_string is set")
	}
	if c.Replay.Speed <= 0 {
		return fmt.Errorf("replay.speed must be positive")
	}
	return nil
}

// QueuePolicy translates the queue section into the ports policy struct.
func (c *Config) QueuePolicy() ports.Policy {
	return ports.Policy{
		MaxQueueDepth: c.Queue.MaxDepth,
		OnQueueFull:   c.Queue.OnFull,
	}
}
