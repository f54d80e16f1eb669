package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ioccollector/internal/logging"
	"ioccollector/internal/server"
)

func main() {
	_ = godotenv.Load()
	logging.Init("ioc-server")
	cfg := server.LoadConfig()

	srv := server.New(nil, cfg)
	if err := srv.Reload(cfg.GeoPath()); err != nil {
		slog.Warn("dataset unavailable, serving 503 until reload", "err", err)
	}

	if err := srv.StartMetrics(cfg.MetricsAddr); err != nil {
		slog.Error("metrics server error", "err", err)
	}
	go func() {
		if err := srv.StartGRPC(cfg.GRPCAddr); err != nil {
			slog.Error("grpc server error", "err", err)
		}
	}()

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s == syscall.SIGHUP {
			if err := srv.Reload(cfg.GeoPath()); err != nil {
				slog.Warn("reload failed", "err", err)
			}
			continue
		}
		break
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	srv.Stop()
}
