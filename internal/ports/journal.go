package ports

import "github.com/frameflow/frameflow/internal/domain"

// Journal persists per-frame delivery records for offline latency analysis.
type Journal interface {
	WriteFrames(records []domain.FrameRecord) error
	Name() string
}
