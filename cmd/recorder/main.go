package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"classrecord/internal/cli"
	"classrecord/internal/client"
	"classrecord/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		API:    client.New(cfg.APIURL, cfg.APIToken, cfg.ClientTimeout),
		Config: cfg,
	}
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
