package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/landpower/internal/scoreclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scoreclient.Run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		if errors.Is(err, scoreclient.ErrUsage) {
			scoreclient.Usage(os.Stderr)
			stop()
			os.Exit(2)
		}
		stop()
		os.Exit(1)
	}
}
