// Command trustchain runs the asset tracking backend: a REST and
// websocket API over on-ledger asset records, plus the recurring sensor
// simulation scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unw4/TrustChain/internal/app"
	"github.com/unw4/TrustChain/internal/config"
)

func main() {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trustchain: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
