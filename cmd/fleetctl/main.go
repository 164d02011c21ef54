// Command fleetctl is the operator CLI for the fleet dispatch backend:
// schema migrations, listings and manual trip lifecycle changes against the
// same store the API server uses.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(openStore).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
