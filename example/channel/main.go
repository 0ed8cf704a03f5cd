package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frameflow/frameflow"
)

func main() {
	cfg := &frameflow.Config{
		Pipeline: frameflow.PipelineConfig{
			FramePeriod: frameflow.Duration(16667 * time.Microsecond),
		},
	}

	consumer := frameflow.NewChannelConsumer(32)
	defer consumer.Close()

	go func() {
		for batch := range consumer.Frames() {
			fmt.Printf("frame with %d samples at %s\n", len(batch), time.Now().Format(time.RFC3339Nano))
		}
	}()

	rt, err := frameflow.NewRuntime(cfg, frameflow.WithConsumer(consumer))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	if err := rt.Start(); err != nil {
		log.Fatalf("start runtime: %v", err)
	}

	for i := 0; i < 120; i++ {
		rt.Dispatch(fmt.Sprintf("event-%d", i))
		time.Sleep(8 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	fmt.Printf("delivered %d samples across %d frames\n", rt.Delivered(), rt.Frames())
}
