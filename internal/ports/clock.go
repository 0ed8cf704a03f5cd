package ports

import "github.com/frameflow/frameflow/internal/domain"

// FrameClock abstracts the periodic rendering signal. Production clocks tick
// at the display cadence; test clocks are driven explicitly. The dispatcher
// never owns the clock, it only reacts to the ticks it is given.
type FrameClock interface {
	// Start installs the tick handler. Tick timestamps must be strictly
	// increasing. The handler runs on the clock's own context.
	Start(onTick func(t domain.TickTime)) error
	Stop() error
	// RequestFrame hints that a frame is wanted. Free-running clocks may
	// ignore it; on-demand clocks use it to schedule the next tick.
	RequestFrame()
}
