package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/factgraph/backend/internal/setup"
	"github.com/factgraph/backend/internal/util"
)

func main() {
	util.LoadEnv()
	setup.InitLogger("factctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
