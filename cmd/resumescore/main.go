package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resumescore/internal/cli"
	"resumescore/internal/config"
	"resumescore/internal/errors"
)

func main() {
	// Commands see one context, canceled on Ctrl-C or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting resumescore application",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"default_role", cfg.Engine.DefaultRole)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
