package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"PolicyCrawler/internal/app"
	"PolicyCrawler/internal/config"
	"PolicyCrawler/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $POLICY_CRAWLER_CONFIG)")
	flag.Parse()

	bootLogger := logging.New("info", "text")

	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootLogger.Warn(".env file not loaded", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Error("configuration rejected", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
