package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/halcyonops/spoadmin/internal/adapters/driving/cli"
	"github.com/halcyonops/spoadmin/internal/core/domain"
)

var version = "dev"

// Exit codes. Configuration failures are distinguished so schedulers can
// tell "fix the setup" from "a run went wrong".
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	// A long batch should stop cleanly at a site boundary on SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "spoadmin: %v\n", err)
		if errors.Is(err, domain.ErrConfigurationInvalid) {
			return exitConfig
		}
		return exitError
	}
	return exitOK
}
