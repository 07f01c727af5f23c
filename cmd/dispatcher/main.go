package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/medication-reminder/internal/app/dispatcher"
	"github.com/magabrotheeeer/medication-reminder/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting dispatcher service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := dispatcher.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dispatcher app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("dispatcher app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("dispatcher app stopped gracefully")
}
