package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docshell/internal/app"
	"github.com/dgallion1/docshell/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("DOCSHELL_CONFIG"))
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("loading configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
