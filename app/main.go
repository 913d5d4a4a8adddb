package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akarpov87/stockfeed/app/analysis"
	"github.com/akarpov87/stockfeed/app/api"
	"github.com/akarpov87/stockfeed/app/cfg"
	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
	"github.com/akarpov87/stockfeed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Stockfeed server", "version", appCfg.Version)

	archiveDB, err := database.NewConnection(appCfg.ArchiveDBPath)
	if err != nil {
		slog.Error("Failed to open archive database", "path", appCfg.ArchiveDBPath, "error", err)
		os.Exit(1)
	}
	defer archiveDB.Close()

	catalogDB, err := database.NewConnection(appCfg.CatalogDBPath)
	if err != nil {
		slog.Error("Failed to open catalog database", "path", appCfg.CatalogDBPath, "error", err)
		os.Exit(1)
	}
	defer catalogDB.Close()

	version, dirty, err := database.RunArchiveMigrations(archiveDB)
	if err != nil {
		slog.Error("Failed to run archive migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Archive database ready", "path", appCfg.ArchiveDBPath, "migration_version", version, "dirty", dirty)

	version, dirty, err = database.RunCatalogMigrations(catalogDB)
	if err != nil {
		slog.Error("Failed to run catalog migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog database ready", "path", appCfg.CatalogDBPath, "migration_version", version, "dirty", dirty)

	archiveRepo := database.NewArchiveRepository(archiveDB)
	catalogRepo := database.NewCatalogRepository(catalogDB)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount())

	dictionary, err := analysis.LoadDictionary(appCfg.SymbolsFile)
	if err != nil {
		slog.Error("Failed to load symbol dictionary", "path", appCfg.SymbolsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Symbol dictionary loaded", "symbols", len(dictionary.Symbols))

	httpClient := &http.Client{}
	parser := feed.NewParser()
	tracer := feed.NewTracer()
	extractor := feed.NewContentExtractor()
	analyzer := analysis.NewExtractor(dictionary)

	scheduler := tasks.NewScheduler(configCache, archiveRepo, catalogRepo,
		httpClient, parser, tracer, extractor, analyzer)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	handler := api.NewHandler(configCache, archiveRepo, catalogRepo, scheduler,
		httpClient, parser, appCfg.UserAgent)
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
		slog.Info("Starting HTTP server", "port", appCfg.Port)
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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
