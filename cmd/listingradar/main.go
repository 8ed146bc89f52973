package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ListingRadar/internal/app"
	"ListingRadar/internal/config"
	"ListingRadar/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single scan pass and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application not built", "error", err)
		os.Exit(1)
	}

	if *once {
		if err := application.RunOnce(ctx); err != nil {
			logger.Error("scan pass failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.RunScheduled(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
