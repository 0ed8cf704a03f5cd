package domain

// TickTime is a unitless timestamp on the frame clock's timeline. Sample
// arrival times and tick times share the same unit; the pipeline never
// interprets the unit itself, only the ordering.
type TickTime = int64

// Sample is one platform input event awaiting frame-synchronized delivery.
type Sample struct {
	// Timestamp is the arrival time, monotonically non-decreasing across
	// samples. Ties are broken by Seq.
	Timestamp TickTime
	// Seq orders samples that share an arrival timestamp.
	Seq uint64
	// Payload is forwarded to the consumer unchanged.
	Payload any
}

// FrameRecord describes one produced frame: how many samples it carried and
// the cumulative delivered count up to and including that frame.
type FrameRecord struct {
	Index      uint64   `json:"frame_index"`
	Tick       TickTime `json:"tick_time"`
	Delivered  int      `json:"delivered"`
	Cumulative uint64   `json:"cumulative"`
}
