package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/app"
	"github.com/engineerTimber/littleYBJ/internal/config"
	"github.com/engineerTimber/littleYBJ/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "littleYBJ:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	// Sync can legitimately fail on stderr sinks; nothing to do about it.
	defer func() { _ = log.Sync() }()

	bot, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}

	if err := bot.Run(context.Background()); err != nil {
		log.Error("exited with error", zap.Error(err))
		return err
	}
	return nil
}
