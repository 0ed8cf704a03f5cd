package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/frameflow/frameflow"
)

func main() {
	cfg, err := frameflow.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	consumer := frameflow.NewCallbackConsumer(func(payload any) {
		fmt.Printf("delivered %v\n", payload)
	}, nil)

	rt, err := frameflow.NewRuntime(cfg, frameflow.WithConsumer(consumer))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime exited: %v", err)
	}
}
