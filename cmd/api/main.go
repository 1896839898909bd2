package main

import (
	"context"
	"log"

	"github.com/otikanelson/Darb-Networks-sub001/cmd/api/app"
	"github.com/otikanelson/Darb-Networks-sub001/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}
