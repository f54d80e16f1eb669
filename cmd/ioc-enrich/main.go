package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"ioccollector/internal/common"
	"ioccollector/internal/enrich"
	"ioccollector/internal/export"
	"ioccollector/internal/geo"
	"ioccollector/internal/logging"
	"ioccollector/internal/policy"
	"ioccollector/internal/server"
	"ioccollector/internal/threat"
)

func main() {
	_ = godotenv.Load()
	logging.Init("ioc-enrich")
	cfg := server.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("enrichment failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *server.Config) error {
	collected, err := threat.ReadRecordsCSV(cfg.CollectedPath())
	if err != nil {
		return err
	}

	engine, err := policy.LoadEngine(cfg.RulesFile)
	if err != nil {
		return err
	}
	enriched := enrich.NewAggregator(engine).Aggregate(collected)
	if err := enrich.WriteCSV(cfg.EnrichedPath(), enriched); err != nil {
		return err
	}
	counts := enrich.CountByRisk(enriched)
	slog.Info("risk scoring finished",
		"path", cfg.EnrichedPath(),
		"records", humanize.Comma(int64(len(enriched))),
		"high", counts[common.RiskHigh], "medium", counts[common.RiskMedium], "low", counts[common.RiskLow],
	)

	resolver, closer, err := newResolver(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	interval := cfg.GeoInterval
	if cfg.GeoIPDB != "" {
		interval = 0
	}
	enricher := geo.NewEnricher(geo.LoadCache(cfg.GeoCache), resolver, geo.MaxBatch, interval)
	located, _, err := enricher.Enrich(ctx, enriched)
	if err != nil {
		return err
	}
	if err := geo.WriteCSV(cfg.GeoPath(), located); err != nil {
		return err
	}
	for _, c := range geo.TopCountries(located, 10) {
		slog.Info("top country", "country", c.Country, "indicators", c.Count)
	}

	if _, err := export.ByCategory(cfg.OutputDir, enriched); err != nil {
		return err
	}
	if cfg.SQLitePath != "" {
		if err := export.SQLite(ctx, cfg.SQLitePath, located); err != nil {
			return err
		}
		slog.Info("sqlite export written", "path", cfg.SQLitePath)
	}
	return nil
}

// newResolver uses the local MaxMind database when configured and the batch service otherwise.
func newResolver(cfg *server.Config) (geo.Resolver, io.Closer, error) {
	if cfg.GeoIPDB == "" {
		return geo.NewBatchClient(cfg.GeoURL, cfg.GeoTimeout), nil, nil
	}
	r, err := geo.OpenMMDB(cfg.GeoIPDB, cfg.GeoIPASNDB)
	if err != nil {
		return nil, nil, err
	}
	return r, r, nil
}
