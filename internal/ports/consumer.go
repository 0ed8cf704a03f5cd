package ports

// Consumer is the boundary to the script runtime. Both callbacks run
// exclusively on the frame clock's context: every DeliverSample for a frame
// strictly precedes that frame's BeginFrame.
type Consumer interface {
	DeliverSample(payload any)
	BeginFrame()
}
