package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frameflow/frameflow"
)

// Drives the pipeline with a manual clock: samples go in, ticks are issued by
// hand, and every frame is recorded. Nothing here depends on wall time.
func main() {
	cfg := &frameflow.Config{
		Pipeline: frameflow.PipelineConfig{
			FramePeriod: frameflow.Duration(10 * time.Millisecond),
		},
	}

	clock := frameflow.NewManualClock()
	recorder := frameflow.NewRecorder()

	consumer := frameflow.NewCallbackConsumer(func(payload any) {
		fmt.Printf("  deliver %v\n", payload)
	}, func() {
		fmt.Println("  begin frame")
	})

	rt, err := frameflow.NewRuntime(cfg,
		frameflow.WithClock(clock),
		frameflow.WithConsumer(consumer),
		frameflow.WithFrameObserver(recorder.ObserveFrame),
	)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	if err := rt.Start(); err != nil {
		log.Fatalf("start runtime: %v", err)
	}

	rt.Dispatch("pointer-down")
	rt.Dispatch("pointer-move")
	fmt.Println("tick 1:")
	clock.Tick(10_000_000)

	rt.Dispatch("pointer-up")
	fmt.Println("tick 2:")
	clock.Tick(20_000_000)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rt.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}

	for _, rec := range recorder.Records() {
		fmt.Printf("frame %d: delivered=%d cumulative=%d\n", rec.Index, rec.Delivered, rec.Cumulative)
	}
}
