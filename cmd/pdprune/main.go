package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ccbhj/pdprune/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.E("%s", err)
		stop()
		os.Exit(1)
	}
}
