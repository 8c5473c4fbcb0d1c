package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careerkit/jobfeed/app/api"
	"github.com/careerkit/jobfeed/app/cfg"
	"github.com/careerkit/jobfeed/app/feed"
	"github.com/careerkit/jobfeed/app/store"
	"github.com/careerkit/jobfeed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting JobFeed server", "version", appCfg.Version)

	st, err := openStore(appCfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()
	slog.Info("Store ready", "backend", appCfg.StorageBackend)

	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		log.Fatalf("Failed to load source configurations: %v", err)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	httpClient := &http.Client{}
	sources := make([]feed.Source, 0, configCache.GetConfigCount())
	for _, sourceConfig := range configCache.GetEnabledConfigs() {
		source, err := feed.NewSource(sourceConfig, httpClient, appCfg.UserAgent, time.Now)
		if err != nil {
			log.Fatalf("Failed to build source %s: %v", sourceConfig.Name, err)
		}
		sources = append(sources, source)
		slog.Info("Source registered", "source", sourceConfig.Name, "type", sourceConfig.Type, "url", sourceConfig.URL)
	}

	aggregator := tasks.NewAggregator(st, sources, appCfg.MaxJobs, time.Now)

	scheduler := tasks.NewScheduler(aggregator, time.Duration(appCfg.SyncInterval)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	handler := api.NewHandler(aggregator, st)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func openStore(appCfg *cfg.Cfg) (store.Store, error) {
	switch appCfg.StorageBackend {
	case "sqlite":
		return store.NewSQLiteStore(appCfg.SQLitePath)
	default:
		return store.NewFileStore(appCfg.DataDir)
	}
}
