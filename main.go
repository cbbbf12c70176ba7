package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"timeless-mapper/internal/api"
	"timeless-mapper/internal/config"
	"timeless-mapper/internal/db"
	"timeless-mapper/internal/logger"
	"timeless-mapper/internal/refdata"
	"timeless-mapper/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(2)
	}

	logger.Banner(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "timeless-mapper", cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("OTel", fmt.Sprintf("Tracing disabled: %v", err))
	} else if cfg.OTelEndpoint != "" {
		logger.Info("OTel", "Exporting traces to "+cfg.OTelEndpoint)
	}
	defer shutdownTracing(context.Background())

	os.MkdirAll(cfg.DataDir, 0755)
	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.DataDir, dbPath)
	}
	database, err := db.Open(dbPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	loader := refdata.NewLoader(cfg.DataDir, refdata.Sources{
		TreeFile:    cfg.TreeFile,
		WeightsFile: cfg.WeightsFile,
		TreeURL:     cfg.TreeURL,
		WeightsURL:  cfg.WeightsURL,
	})
	srv := api.NewServer(cfg, database, loader)

	// Reference data loads in the background; data endpoints answer 503 until
	// it is ready. A broken data file is fatal.
	go func() {
		data, err := loader.Load(ctx)
		if err != nil {
			logger.Error("DATA", fmt.Sprintf("Load failed: %v", err))
			stop()
			return
		}
		srv.SetData(data)
		logger.Success("DATA", "Seed mapper ready")
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Server(cfg.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
	logger.Info("Server", "Stopped")
}
