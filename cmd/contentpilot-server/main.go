// Package main provides the HTTP and websocket server for contentpilot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/contentpilot/internal/app"
	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/raphaelgruber/contentpilot/internal/server"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe saved content on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting contentpilot-server",
		"port", cfg.ServerPort,
		"provider", cfg.LLMProvider,
		"store", cfg.Store,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Error("failed to close content store", "error", err)
		}
	}()

	if *wipeDB || os.Getenv("CONTENTPILOT_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := application.WipeData(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe content store", "error", err)
			os.Exit(1)
		}
	}

	handler := server.NewHTTPHandler(server.HTTPConfig{
		Orchestrator: application.Orchestrator,
		Sessions:     application.Sessions,
		Library:      application.Library,
		Metrics:      application.Metrics,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// turns wait on the model
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP API available", "url", fmt.Sprintf("http://localhost:%s/v1", cfg.ServerPort))
		logger.Info("stats available", "url", fmt.Sprintf("http://localhost:%s/stats", cfg.ServerPort))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down server", "signal", sig)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
