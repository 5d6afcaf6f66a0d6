package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/intern-ledger/internal/config"
	"github.com/example/intern-ledger/internal/logging"
	"github.com/example/intern-ledger/internal/persistence/backend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so export output on stdout stays clean JSON.
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	handle, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "storage", cfg.Storage)
		os.Exit(1)
	}

	cli := newCommandLine(cfg, handle.Store, logger)
	runErr := cli.run(ctx, os.Args)
	if cerr := handle.Close(); cerr != nil {
		logger.Error("failed to close storage", "error", cerr)
	}
	if runErr != nil {
		if !errors.Is(runErr, errHelp) {
			logger.Error("command failed", "error", runErr)
		}
		os.Exit(1)
	}
}
