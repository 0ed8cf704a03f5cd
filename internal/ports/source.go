package ports

import "github.com/frameflow/frameflow/internal/domain"

// Source produces platform input samples into the pipeline. Timestamps must be
// monotonically non-decreasing across emitted samples.
type Source interface {
	Start(out chan<- domain.Sample) error
	Stop() error
}
