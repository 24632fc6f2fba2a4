package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/warden/internal/cli"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, Version); err != nil {
		// cobra has already printed the error
		stop()
		os.Exit(1)
	}
}
