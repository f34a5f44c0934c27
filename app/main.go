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

	"github.com/lysyi3m/relaycast/app/api"
	"github.com/lysyi3m/relaycast/app/cache"
	"github.com/lysyi3m/relaycast/app/catalog"
	"github.com/lysyi3m/relaycast/app/cfg"
	"github.com/lysyi3m/relaycast/app/config"
	"github.com/lysyi3m/relaycast/app/feed"
	"github.com/lysyi3m/relaycast/app/relays"
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

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	podcastCfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		slog.Error("Failed to load podcast configuration", "path", appCfg.ConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Podcast configuration loaded",
		"creator", podcastCfg.Creator.PubKey,
		"relays", len(podcastCfg.Relays))

	coordinator := relays.NewCoordinator(relays.NewRelaySources(podcastCfg.Relays))
	service := catalog.NewService(coordinator, podcastCfg.Creator.PubKey, podcastCfg.Podcast, appCfg.QueryLimit)

	feedCache, err := cache.New(appCfg.CachePath, time.Duration(appCfg.CacheTTL)*time.Second)
	if err != nil {
		slog.Error("Failed to open feed cache", "path", appCfg.CachePath, "error", err)
		os.Exit(1)
	}
	defer feedCache.Close()

	builder := feed.NewBuilder(service, feedCache, podcastCfg.Relays, podcastCfg.Creator.PubKey)
	writer := feed.NewWriter(appCfg.OutputDir)

	if appCfg.Build {
		runBuild(builder, writer)
		return
	}

	runServer(appCfg, builder, feedCache)
}

// runBuild performs one discovery/reconciliation/synthesis cycle and writes
// the artifacts. Relay failures are absorbed upstream; only a synthesis or
// write failure exits non-zero.
func runBuild(builder *feed.Builder, writer *feed.Writer) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := builder.Run(ctx, true)

	if err := writer.Run(result.Document, result.Health); err != nil {
		slog.Error("Feed build failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Feed build complete",
		"episodes", result.EpisodeCount,
		"bytes", len(result.Document))
}

func runServer(appCfg *cfg.Cfg, builder *feed.Builder, feedCache *cache.Cache) {
	handler := api.NewHandler(builder, feedCache)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
