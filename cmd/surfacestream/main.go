// Package main implements the surfacestream command, a headless surface
// mirror. It connects to an agent's event stream, maintains the local surface
// state, and logs surface lifecycle events. Useful for inspecting an agent's
// stream and as a wiring reference for embedding the engine in a renderer.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/c360/surfacestream/config"
	"github.com/c360/surfacestream/dispatch"
	"github.com/c360/surfacestream/streamclient"
	"github.com/c360/surfacestream/surface"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "surfacestream"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, exit, err := parseAndValidateFlags()
	if exit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cliCfg.Endpoint != "" {
		cfg.Endpoint = cliCfg.Endpoint
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate configuration: %w", err)
		}
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := surface.NewStore(logger)
	logSurfaceEvents(store, logger)

	client := streamclient.New(
		buildTransport(cfg),
		dispatch.New(store, logger),
		streamclient.WithLogger(logger),
		streamclient.WithBackoffPolicy(cfg.BackoffPolicy()),
		streamclient.WithMetrics(streamclient.NewMetrics(registry)),
	)
	defer func() {
		_ = client.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, runCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("connecting to agent", "endpoint", cfg.Endpoint, "transport", cfg.Transport)
		return client.Connect(runCtx, cfg.Endpoint)
	})

	if cfg.MetricsAddr != "" {
		group.Go(func() error {
			return serveMetrics(runCtx, cfg.MetricsAddr, registry, logger)
		})
	}

	err = group.Wait()
	logger.Info("shut down")
	return err
}

// buildTransport selects the connection mode from configuration.
func buildTransport(cfg *config.Config) streamclient.Transport {
	headers := http.Header{}
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}

	if cfg.Transport == config.TransportWebSocket {
		return streamclient.NewWebSocketTransport(nil, headers)
	}
	return streamclient.NewHTTPTransport(&http.Client{}, headers)
}

// logSurfaceEvents subscribes lifecycle logging to the store. The
// subscriptions live as long as the process; the unsubscribe handles are
// discarded.
func logSurfaceEvents(store *surface.Store, logger *slog.Logger) {
	store.OnSurfaceCreated(func(surfaceID string) {
		logger.Info("surface created", "surface_id", surfaceID)
	})
	store.OnSurfaceChanged(func(surfaceID string) {
		surf, ok := store.GetSurface(surfaceID)
		if !ok {
			logger.Info("surface removed", "surface_id", surfaceID)
			return
		}
		logger.Info("surface changed",
			"surface_id", surfaceID,
			"ready", surf.IsReady(),
			"components", len(surf.ComponentIDs()))
	})
	store.OnSurfaceDeleted(func(surfaceID string) {
		logger.Info("surface deleted", "surface_id", surfaceID)
	})
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
