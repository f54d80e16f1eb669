package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ioccollector/internal/logging"
	"ioccollector/internal/server"
	"ioccollector/internal/threat"
)

func main() {
	_ = godotenv.Load()
	logging.Init("feed-loader")
	cfg := server.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := threat.NewFileStore(cfg.OutputDir)
	fetcher := threat.NewHTTPFetcher(cfg.FetchTimeout, cfg.DataDir)
	controller := threat.NewETLController(cfg.FeedsFile, fetcher, store)

	if _, _, err := controller.Run(ctx); err != nil {
		slog.Error("etl run failed", "err", err)
		os.Exit(1)
	}
}
